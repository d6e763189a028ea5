package role

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/admin-management/internal"
	roleModel "github.com/frahmantamala/admin-management/internal/core/datamodel/role"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/core/events"
	"github.com/frahmantamala/admin-management/internal/permission"
)

type RepositoryAPI interface {
	List(ctx context.Context, query QueryDTO) ([]*roleModel.Role, int64, error)
	FindByID(ctx context.Context, roleID int64) (*roleModel.Role, error)
	ExistsName(ctx context.Context, roleName string, excludeID int64) (bool, error)
	ExistsKey(ctx context.Context, roleKey string, excludeID int64) (bool, error)
	Create(ctx context.Context, role *roleModel.Role, menuIDs []int64) error
	Update(ctx context.Context, role *roleModel.Role, menuIDs []int64) error
	UpdateDataScope(ctx context.Context, role *roleModel.Role, deptIDs []int64) error
	UpdateStatus(ctx context.Context, roleID int64, status string) error
	SoftDelete(ctx context.Context, roleIDs []int64) error
	CountUsersByRoleID(ctx context.Context, roleID int64) (int64, error)
	UserIDsByRoleID(ctx context.Context, roleID int64) ([]int64, error)
	MenuIDsByRoleID(ctx context.Context, roleID int64) ([]int64, error)
	AllocatedUsers(ctx context.Context, roleID int64, userName string) ([]*userModel.User, error)
	UnallocatedUsers(ctx context.Context, roleID int64, userName string) ([]*userModel.User, error)
	GrantUsers(ctx context.Context, roleID int64, userIDs []int64) error
	RevokeUsers(ctx context.Context, roleID int64, userIDs []int64) error
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

type PageResult struct {
	Rows  []*roleModel.Role `json:"rows"`
	Total int64             `json:"total"`
}

type DetailResult struct {
	Role    *roleModel.Role `json:"role"`
	MenuIDs []int64         `json:"menuIds"`
}

func (s *Service) List(ctx context.Context, query QueryDTO) (*PageResult, error) {
	query.Normalize()
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	return &PageResult{Rows: rows, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, roleID int64) (*DetailResult, error) {
	role, err := s.loadRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	menuIDs, err := s.repo.MenuIDsByRoleID(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role menus", err)
	}
	return &DetailResult{Role: role, MenuIDs: menuIDs}, nil
}

func (s *Service) Create(ctx context.Context, dto CreateRoleDTO) (*roleModel.Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, dto.RoleName, dto.RoleKey, 0); err != nil {
		return nil, err
	}

	status := dto.Status
	if status == "" {
		status = "0"
	}

	role := &roleModel.Role{
		RoleName:  dto.RoleName,
		RoleKey:   dto.RoleKey,
		RoleSort:  dto.RoleSort,
		DataScope: roleModel.ScopeAll,
		Status:    status,
		DelFlag:   "0",
		Remark:    dto.Remark,
	}

	if err := s.repo.Create(ctx, role, dto.MenuIDs); err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.logger.Info("role created", "role_id", role.RoleID, "role_key", role.RoleKey)
	return role, nil
}

// Update edits the role and its menu grants, then broadcasts a permission
// refresh for everyone holding the role.
func (s *Service) Update(ctx context.Context, dto UpdateRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if permission.IsAdminRole(dto.RoleID) {
		return internal.ErrAdminNotAllowed
	}
	if err := s.checkUnique(ctx, dto.RoleName, dto.RoleKey, dto.RoleID); err != nil {
		return err
	}

	role, err := s.loadRole(ctx, dto.RoleID)
	if err != nil {
		return err
	}

	role.RoleName = dto.RoleName
	role.RoleKey = dto.RoleKey
	role.RoleSort = dto.RoleSort
	role.Status = dto.Status
	role.Remark = dto.Remark

	if err := s.repo.Update(ctx, role, dto.MenuIDs); err != nil {
		return internal.NewInternalError("failed to update role", err)
	}

	s.broadcastPermissionChange(ctx, role.RoleID)
	return nil
}

// UpdateDataScope sets the role's row-visibility policy. Custom policy
// replaces the role's department associations.
func (s *Service) UpdateDataScope(ctx context.Context, dto DataScopeDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if permission.IsAdminRole(dto.RoleID) {
		return internal.ErrAdminNotAllowed
	}

	role, err := s.loadRole(ctx, dto.RoleID)
	if err != nil {
		return err
	}

	role.DataScope = dto.DataScope
	deptIDs := dto.DeptIDs
	if dto.DataScope != roleModel.ScopeCustom {
		deptIDs = nil
	}

	if err := s.repo.UpdateDataScope(ctx, role, deptIDs); err != nil {
		return internal.NewInternalError("failed to update data scope", err)
	}

	s.broadcastPermissionChange(ctx, role.RoleID)
	return nil
}

func (s *Service) ChangeStatus(ctx context.Context, dto ChangeStatusDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if permission.IsAdminRole(dto.RoleID) {
		return internal.ErrAdminNotAllowed
	}

	if err := s.repo.UpdateStatus(ctx, dto.RoleID, dto.Status); err != nil {
		return internal.NewInternalError("failed to change role status", err)
	}

	s.broadcastPermissionChange(ctx, dto.RoleID)
	return nil
}

// Delete refuses roles that still have members; assignments must be revoked
// first so a delete is never a silent permission revocation.
func (s *Service) Delete(ctx context.Context, roleIDs []int64) error {
	for _, id := range roleIDs {
		if permission.IsAdminRole(id) {
			return internal.ErrAdminNotAllowed
		}

		role, err := s.loadRole(ctx, id)
		if err != nil {
			return err
		}

		count, err := s.repo.CountUsersByRoleID(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to count role members", err)
		}
		if count > 0 {
			return internal.NewValidationError(role.RoleName+" is assigned and cannot be deleted", internal.ErrCodeRoleAssigned)
		}
	}

	if err := s.repo.SoftDelete(ctx, roleIDs); err != nil {
		return internal.NewInternalError("failed to delete roles", err)
	}
	return nil
}

func (s *Service) AllocatedUsers(ctx context.Context, roleID int64, userName string) ([]*userModel.User, error) {
	users, err := s.repo.AllocatedUsers(ctx, roleID, userName)
	if err != nil {
		return nil, internal.NewInternalError("failed to list allocated users", err)
	}
	return users, nil
}

func (s *Service) UnallocatedUsers(ctx context.Context, roleID int64, userName string) ([]*userModel.User, error) {
	users, err := s.repo.UnallocatedUsers(ctx, roleID, userName)
	if err != nil {
		return nil, internal.NewInternalError("failed to list unallocated users", err)
	}
	return users, nil
}

func (s *Service) GrantUsers(ctx context.Context, dto AuthUserDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if err := s.repo.GrantUsers(ctx, dto.RoleID, dto.UserIDs); err != nil {
		return internal.NewInternalError("failed to grant role", err)
	}

	s.publishRefresh(ctx, dto.RoleID, dto.UserIDs)
	return nil
}

func (s *Service) RevokeUsers(ctx context.Context, dto AuthUserDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	if err := s.repo.RevokeUsers(ctx, dto.RoleID, dto.UserIDs); err != nil {
		return internal.NewInternalError("failed to revoke role", err)
	}

	s.publishRefresh(ctx, dto.RoleID, dto.UserIDs)
	return nil
}

func (s *Service) loadRole(ctx context.Context, roleID int64) (*roleModel.Role, error) {
	role, err := s.repo.FindByID(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return nil, internal.NewNotFoundError("role does not exist", internal.ErrCodeRoleNotFound)
	}
	return role, nil
}

func (s *Service) checkUnique(ctx context.Context, roleName, roleKey string, excludeID int64) error {
	exists, err := s.repo.ExistsName(ctx, roleName, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check role name", err)
	}
	if exists {
		return internal.NewValidationError("role name '"+roleName+"' already exists", internal.ErrCodeRoleNameExists)
	}

	exists, err = s.repo.ExistsKey(ctx, roleKey, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check role key", err)
	}
	if exists {
		return internal.NewValidationError("role key '"+roleKey+"' already exists", internal.ErrCodeRoleKeyExists)
	}
	return nil
}

// broadcastPermissionChange looks up the role's members and publishes the
// refresh event. Best effort: a failed lookup only delays the refresh until
// the members' sessions naturally renew.
func (s *Service) broadcastPermissionChange(ctx context.Context, roleID int64) {
	userIDs, err := s.repo.UserIDsByRoleID(ctx, roleID)
	if err != nil {
		s.logger.Error("permission broadcast: member lookup failed", "role_id", roleID, "error", err)
		return
	}
	s.publishRefresh(ctx, roleID, userIDs)
}

func (s *Service) publishRefresh(ctx context.Context, roleID int64, userIDs []int64) {
	if len(userIDs) == 0 {
		return
	}
	s.bus.Publish(ctx, events.NewPermissionsChangedEvent(roleID, userIDs))
}
