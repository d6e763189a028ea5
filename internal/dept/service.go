package dept

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/frahmantamala/admin-management/internal"
	deptModel "github.com/frahmantamala/admin-management/internal/core/datamodel/dept"
)

type RepositoryAPI interface {
	ListActive(ctx context.Context) ([]*deptModel.Dept, error)
	FindByID(ctx context.Context, deptID int64) (*deptModel.Dept, error)
	ExistsName(ctx context.Context, parentID int64, deptName string, excludeID int64) (bool, error)
	Create(ctx context.Context, dept *deptModel.Dept) error
	Update(ctx context.Context, dept *deptModel.Dept) error
	UpdateAncestors(ctx context.Context, deptID int64, ancestors string) error
	SoftDelete(ctx context.Context, deptID int64) error
	Descendants(ctx context.Context, deptID int64) ([]*deptModel.Dept, error)
	HasChildren(ctx context.Context, deptID int64) (bool, error)
	CountUsers(ctx context.Context, deptID int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Tree returns the active departments nested by parent id.
func (s *Service) Tree(ctx context.Context) ([]*TreeNode, error) {
	depts, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to load departments", err)
	}
	return buildTree(depts), nil
}

func (s *Service) Get(ctx context.Context, deptID int64) (*deptModel.Dept, error) {
	dept, err := s.repo.FindByID(ctx, deptID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load department", err)
	}
	if dept == nil {
		return nil, internal.NewNotFoundError("department does not exist", internal.ErrCodeDeptNotFound)
	}
	return dept, nil
}

// Create places the department under its parent with a materialized
// ancestors path, e.g. "0,100,101" for a third-level node.
func (s *Service) Create(ctx context.Context, dto CreateDeptDTO) (*deptModel.Dept, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ancestors := "0"
	if dto.ParentID != 0 {
		parent, err := s.Get(ctx, dto.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.Status != "0" {
			return nil, internal.NewValidationError("parent department is disabled", internal.ErrCodeDeptDisabled)
		}
		ancestors = parent.Ancestors + "," + strconv.FormatInt(parent.DeptID, 10)
	}

	exists, err := s.repo.ExistsName(ctx, dto.ParentID, dto.DeptName, 0)
	if err != nil {
		return nil, internal.NewInternalError("failed to check department name", err)
	}
	if exists {
		return nil, internal.NewValidationError("department name already exists under this parent", internal.ErrCodeDeptNameExists)
	}

	status := dto.Status
	if status == "" {
		status = "0"
	}

	dept := &deptModel.Dept{
		ParentID:  dto.ParentID,
		Ancestors: ancestors,
		DeptName:  dto.DeptName,
		OrderNum:  dto.OrderNum,
		Leader:    dto.Leader,
		Phone:     dto.Phone,
		Email:     dto.Email,
		Status:    status,
		DelFlag:   "0",
	}

	if err := s.repo.Create(ctx, dept); err != nil {
		return nil, internal.NewInternalError("failed to create department", err)
	}
	return dept, nil
}

// Update moves the department when the parent changes, rewriting the
// ancestors path of the node and every descendant.
func (s *Service) Update(ctx context.Context, dto UpdateDeptDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	dept, err := s.Get(ctx, dto.DeptID)
	if err != nil {
		return err
	}

	exists, err := s.repo.ExistsName(ctx, dto.ParentID, dto.DeptName, dto.DeptID)
	if err != nil {
		return internal.NewInternalError("failed to check department name", err)
	}
	if exists {
		return internal.NewValidationError("department name already exists under this parent", internal.ErrCodeDeptNameExists)
	}

	if dto.ParentID != dept.ParentID {
		newAncestors := "0"
		if dto.ParentID != 0 {
			parent, err := s.Get(ctx, dto.ParentID)
			if err != nil {
				return err
			}
			if strings.Contains(","+parent.Ancestors+",", ","+strconv.FormatInt(dept.DeptID, 10)+",") {
				return ValidationError{Msg: "cannot move a department under its own descendant"}
			}
			newAncestors = parent.Ancestors + "," + strconv.FormatInt(parent.DeptID, 10)
		}
		if err := s.reparentDescendants(ctx, dept, newAncestors); err != nil {
			return err
		}
		dept.Ancestors = newAncestors
	}

	dept.ParentID = dto.ParentID
	dept.DeptName = dto.DeptName
	dept.OrderNum = dto.OrderNum
	dept.Leader = dto.Leader
	dept.Phone = dto.Phone
	dept.Email = dto.Email
	dept.Status = dto.Status

	if err := s.repo.Update(ctx, dept); err != nil {
		return internal.NewInternalError("failed to update department", err)
	}
	return nil
}

// Delete refuses departments that still have children or assigned users.
func (s *Service) Delete(ctx context.Context, deptID int64) error {
	if _, err := s.Get(ctx, deptID); err != nil {
		return err
	}

	hasChildren, err := s.repo.HasChildren(ctx, deptID)
	if err != nil {
		return internal.NewInternalError("failed to check child departments", err)
	}
	if hasChildren {
		return internal.NewValidationError("department has child departments and cannot be deleted", internal.ErrCodeDeptHasChildren)
	}

	users, err := s.repo.CountUsers(ctx, deptID)
	if err != nil {
		return internal.NewInternalError("failed to count department users", err)
	}
	if users > 0 {
		return internal.NewValidationError("department has assigned users and cannot be deleted", internal.ErrCodeDeptHasUsers)
	}

	if err := s.repo.SoftDelete(ctx, deptID); err != nil {
		return internal.NewInternalError("failed to delete department", err)
	}
	return nil
}

// DescendantIDs returns the department and everything below it, the set used
// by the dept-and-children data-scope policy.
func (s *Service) DescendantIDs(ctx context.Context, deptID int64) ([]int64, error) {
	descendants, err := s.repo.Descendants(ctx, deptID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load descendants", err)
	}

	ids := []int64{deptID}
	for _, d := range descendants {
		ids = append(ids, d.DeptID)
	}
	return ids, nil
}

// reparentDescendants swaps the moved node's old ancestors prefix for the new
// one on every descendant path.
func (s *Service) reparentDescendants(ctx context.Context, dept *deptModel.Dept, newAncestors string) error {
	descendants, err := s.repo.Descendants(ctx, dept.DeptID)
	if err != nil {
		return internal.NewInternalError("failed to load descendants", err)
	}

	oldPrefix := dept.Ancestors + "," + strconv.FormatInt(dept.DeptID, 10)
	newPrefix := newAncestors + "," + strconv.FormatInt(dept.DeptID, 10)

	for _, child := range descendants {
		rewritten := newPrefix + strings.TrimPrefix(child.Ancestors, oldPrefix)
		if err := s.repo.UpdateAncestors(ctx, child.DeptID, rewritten); err != nil {
			return internal.NewInternalError("failed to rewrite ancestors", err)
		}
	}
	return nil
}

func buildTree(depts []*deptModel.Dept) []*TreeNode {
	nodes := make(map[int64]*TreeNode, len(depts))
	for _, d := range depts {
		nodes[d.DeptID] = &TreeNode{Dept: d}
	}

	var roots []*TreeNode
	for _, d := range depts {
		node := nodes[d.DeptID]
		if parent, ok := nodes[d.ParentID]; ok {
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
