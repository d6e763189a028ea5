package menu

import (
	"context"
	"log/slog"
	"sort"

	"github.com/frahmantamala/admin-management/internal"
	menuModel "github.com/frahmantamala/admin-management/internal/core/datamodel/menu"
)

type RepositoryAPI interface {
	List(ctx context.Context, query QueryDTO) ([]*menuModel.Menu, error)
	FindByID(ctx context.Context, menuID int64) (*menuModel.Menu, error)
	Create(ctx context.Context, menu *menuModel.Menu) error
	Update(ctx context.Context, menu *menuModel.Menu) error
	Delete(ctx context.Context, menuID int64) error
	HasChildren(ctx context.Context, menuID int64) (bool, error)
	CountRoleRefs(ctx context.Context, menuID int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, query QueryDTO) ([]*menuModel.Menu, error) {
	menus, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, internal.NewInternalError("failed to list menus", err)
	}
	return menus, nil
}

// Tree returns the full menu forest nested by parent id.
func (s *Service) Tree(ctx context.Context) ([]*TreeNode, error) {
	menus, err := s.repo.List(ctx, QueryDTO{})
	if err != nil {
		return nil, internal.NewInternalError("failed to load menu tree", err)
	}
	return buildTree(menus), nil
}

func (s *Service) Get(ctx context.Context, menuID int64) (*menuModel.Menu, error) {
	menu, err := s.repo.FindByID(ctx, menuID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load menu", err)
	}
	if menu == nil {
		return nil, internal.NewNotFoundError("menu does not exist", internal.ErrCodeMenuNotFound)
	}
	return menu, nil
}

func (s *Service) Create(ctx context.Context, dto CreateMenuDTO) (*menuModel.Menu, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	status := dto.Status
	if status == "" {
		status = "0"
	}

	menu := &menuModel.Menu{
		MenuName:  dto.MenuName,
		ParentID:  dto.ParentID,
		OrderNum:  dto.OrderNum,
		Path:      dto.Path,
		Component: dto.Component,
		MenuType:  dto.MenuType,
		Visible:   dto.Visible,
		Status:    status,
		Perms:     dto.Perms,
		Icon:      dto.Icon,
		Remark:    dto.Remark,
	}

	if err := s.repo.Create(ctx, menu); err != nil {
		return nil, internal.NewInternalError("failed to create menu", err)
	}
	return menu, nil
}

func (s *Service) Update(ctx context.Context, dto UpdateMenuDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	menu, err := s.Get(ctx, dto.MenuID)
	if err != nil {
		return err
	}

	menu.MenuName = dto.MenuName
	menu.ParentID = dto.ParentID
	menu.OrderNum = dto.OrderNum
	menu.Path = dto.Path
	menu.Component = dto.Component
	menu.MenuType = dto.MenuType
	menu.Visible = dto.Visible
	menu.Status = dto.Status
	menu.Perms = dto.Perms
	menu.Icon = dto.Icon
	menu.Remark = dto.Remark

	if err := s.repo.Update(ctx, menu); err != nil {
		return internal.NewInternalError("failed to update menu", err)
	}
	return nil
}

// Delete refuses menus that still have children or role grants; removing a
// granted menu would silently revoke live permissions.
func (s *Service) Delete(ctx context.Context, menuID int64) error {
	if _, err := s.Get(ctx, menuID); err != nil {
		return err
	}

	hasChildren, err := s.repo.HasChildren(ctx, menuID)
	if err != nil {
		return internal.NewInternalError("failed to check menu children", err)
	}
	if hasChildren {
		return internal.NewValidationError("menu has child menus and cannot be deleted", internal.ErrCodeMenuHasChildren)
	}

	refs, err := s.repo.CountRoleRefs(ctx, menuID)
	if err != nil {
		return internal.NewInternalError("failed to check menu role grants", err)
	}
	if refs > 0 {
		return internal.NewValidationError("menu is granted to roles and cannot be deleted", internal.ErrCodeMenuAssigned)
	}

	if err := s.repo.Delete(ctx, menuID); err != nil {
		return internal.NewInternalError("failed to delete menu", err)
	}
	return nil
}

func buildTree(menus []*menuModel.Menu) []*TreeNode {
	nodes := make(map[int64]*TreeNode, len(menus))
	for _, m := range menus {
		nodes[m.MenuID] = &TreeNode{Menu: m}
	}

	var roots []*TreeNode
	for _, m := range menus {
		node := nodes[m.MenuID]
		if parent, ok := nodes[m.ParentID]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	var sortLevel func(level []*TreeNode)
	sortLevel = func(level []*TreeNode) {
		sort.SliceStable(level, func(i, j int) bool {
			return level[i].OrderNum < level[j].OrderNum
		})
		for _, node := range level {
			sortLevel(node.Children)
		}
	}
	sortLevel(roots)

	return roots
}
