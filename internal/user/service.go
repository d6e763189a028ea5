package user

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/admin-management/internal"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/core/events"
	"github.com/frahmantamala/admin-management/internal/permission"
	"github.com/frahmantamala/admin-management/internal/session"
)

type RepositoryAPI interface {
	List(ctx context.Context, query QueryDTO, dataScope string) ([]*userModel.User, int64, error)
	FindByID(ctx context.Context, userID int64) (*userModel.User, error)
	ExistsUserName(ctx context.Context, userName string, excludeID int64) (bool, error)
	ExistsEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	ExistsPhone(ctx context.Context, phone string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *userModel.User, roleIDs, postIDs []int64) error
	Update(ctx context.Context, user *userModel.User, roleIDs, postIDs []int64) error
	SoftDelete(ctx context.Context, userIDs []int64) error
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	UpdateStatus(ctx context.Context, userID int64, status string) error
	RoleIDsByUserID(ctx context.Context, userID int64) ([]int64, error)
	PostIDsByUserID(ctx context.Context, userID int64) ([]int64, error)
	ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error
}

// ScopeBuilder supplies the data-scope predicate for the requesting user.
type ScopeBuilder interface {
	DataScopeFor(ctx context.Context, userID, deptID int64, deptAlias, userAlias string) (string, error)
}

type Service struct {
	repo       RepositoryAPI
	scopes     ScopeBuilder
	bus        *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, scopes ScopeBuilder, bus *events.EventBus, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, scopes: scopes, bus: bus, bcryptCost: bcryptCost, logger: logger}
}

// DetailResult is one user plus their role and post assignments.
type DetailResult struct {
	User    *userModel.User `json:"user"`
	RoleIDs []int64         `json:"roleIds"`
	PostIDs []int64         `json:"postIds"`
}

type PageResult struct {
	Rows  []*userModel.User `json:"rows"`
	Total int64             `json:"total"`
}

// List returns a page of users visible to the actor under their role
// data-scope policies.
func (s *Service) List(ctx context.Context, query QueryDTO, actor *session.LoginUser) (*PageResult, error) {
	query.Normalize()

	deptID := int64(0)
	if actor.DeptID != nil {
		deptID = *actor.DeptID
	}
	scope, err := s.scopes.DataScopeFor(ctx, actor.UserID, deptID, "d", "u")
	if err != nil {
		return nil, internal.NewInternalError("failed to build data scope", err)
	}

	rows, total, err := s.repo.List(ctx, query, scope)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return &PageResult{Rows: rows, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (*DetailResult, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return nil, internal.NewNotFoundError("user does not exist", internal.ErrCodeUserNotFound)
	}

	roleIDs, err := s.repo.RoleIDsByUserID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user roles", err)
	}
	postIDs, err := s.repo.PostIDsByUserID(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user posts", err)
	}

	return &DetailResult{User: user, RoleIDs: roleIDs, PostIDs: postIDs}, nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*userModel.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, dto.UserName, dto.Email, dto.Phonenumber, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	status := dto.Status
	if status == "" {
		status = "0"
	}

	user := &userModel.User{
		DeptID:      dto.DeptID,
		UserName:    dto.UserName,
		NickName:    dto.NickName,
		Email:       dto.Email,
		Phonenumber: dto.Phonenumber,
		Sex:         dto.Sex,
		Password:    string(hash),
		Status:      status,
		DelFlag:     "0",
		Remark:      dto.Remark,
	}

	if err := s.repo.Create(ctx, user, dto.RoleIDs, dto.PostIDs); err != nil {
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", user.UserID, "user_name", user.UserName)
	return user, nil
}

func (s *Service) Update(ctx context.Context, dto UpdateUserDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if permission.IsAdminUser(dto.UserID) {
		return internal.ErrAdminNotAllowed
	}

	user, err := s.repo.FindByID(ctx, dto.UserID)
	if err != nil {
		return internal.NewInternalError("failed to load user", err)
	}
	if user == nil {
		return internal.NewNotFoundError("user does not exist", internal.ErrCodeUserNotFound)
	}

	if err := s.checkUnique(ctx, "", dto.Email, dto.Phonenumber, dto.UserID); err != nil {
		return err
	}

	currentRoles, err := s.repo.RoleIDsByUserID(ctx, dto.UserID)
	if err != nil {
		return internal.NewInternalError("failed to load user roles", err)
	}

	user.DeptID = dto.DeptID
	user.NickName = dto.NickName
	user.Email = dto.Email
	user.Phonenumber = dto.Phonenumber
	user.Sex = dto.Sex
	user.Status = dto.Status
	user.Remark = dto.Remark

	if err := s.repo.Update(ctx, user, dto.RoleIDs, dto.PostIDs); err != nil {
		return internal.NewInternalError("failed to update user", err)
	}

	if !sameIDSet(currentRoles, dto.RoleIDs) {
		s.publishRefresh(ctx, dto.UserID)
	}
	return nil
}

// Delete soft-deletes the given users. The super administrator and the
// actor's own account are never deletable.
func (s *Service) Delete(ctx context.Context, userIDs []int64, actor *session.LoginUser) error {
	for _, id := range userIDs {
		if permission.IsAdminUser(id) {
			return internal.ErrAdminNotAllowed
		}
		if id == actor.UserID {
			return internal.NewValidationError("cannot delete the current user", internal.ErrCodeDeleteSelf)
		}
	}

	if err := s.repo.SoftDelete(ctx, userIDs); err != nil {
		return internal.NewInternalError("failed to delete users", err)
	}

	s.logger.Info("users deleted", "user_ids", userIDs, "oper", actor.User.UserName)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if permission.IsAdminUser(dto.UserID) {
		return internal.ErrAdminNotAllowed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(ctx, dto.UserID, string(hash)); err != nil {
		return internal.NewInternalError("failed to reset password", err)
	}
	return nil
}

func (s *Service) ChangeStatus(ctx context.Context, dto ChangeStatusDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	if permission.IsAdminUser(dto.UserID) {
		return internal.ErrAdminNotAllowed
	}

	if err := s.repo.UpdateStatus(ctx, dto.UserID, dto.Status); err != nil {
		return internal.NewInternalError("failed to change status", err)
	}
	return nil
}

// AuthRole replaces the user's role assignments.
func (s *Service) AuthRole(ctx context.Context, dto AuthRoleDTO) error {
	if dto.UserID == 0 {
		return ValidationError{Msg: "userId is required"}
	}
	if permission.IsAdminUser(dto.UserID) {
		return internal.ErrAdminNotAllowed
	}

	if err := s.repo.ReplaceRoles(ctx, dto.UserID, dto.RoleIDs); err != nil {
		return internal.NewInternalError("failed to grant roles", err)
	}

	s.publishRefresh(ctx, dto.UserID)
	return nil
}

// publishRefresh asks live sessions of the user to recompute their
// permission set after a role reassignment.
func (s *Service) publishRefresh(ctx context.Context, userID int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.NewPermissionsChangedEvent(0, []int64{userID}))
}

func sameIDSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int64]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; !ok {
			return false
		}
	}
	return true
}

func (s *Service) checkUnique(ctx context.Context, userName, email, phone string, excludeID int64) error {
	if userName != "" {
		exists, err := s.repo.ExistsUserName(ctx, userName, excludeID)
		if err != nil {
			return internal.NewInternalError("failed to check username", err)
		}
		if exists {
			return internal.NewValidationError("login account already exists", internal.ErrCodeUserNameExists)
		}
	}
	if email != "" {
		exists, err := s.repo.ExistsEmail(ctx, email, excludeID)
		if err != nil {
			return internal.NewInternalError("failed to check email", err)
		}
		if exists {
			return internal.NewValidationError("email already in use", internal.ErrCodeEmailExists)
		}
	}
	if phone != "" {
		exists, err := s.repo.ExistsPhone(ctx, phone, excludeID)
		if err != nil {
			return internal.NewInternalError("failed to check phone number", err)
		}
		if exists {
			return internal.NewValidationError("phone number already in use", internal.ErrCodePhoneExists)
		}
	}
	return nil
}
