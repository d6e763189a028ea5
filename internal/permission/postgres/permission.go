package postgres

import (
	"context"

	"gorm.io/gorm"

	roleModel "github.com/frahmantamala/admin-management/internal/core/datamodel/role"
)

// Repository implements the permission read queries over the role/menu join
// tables.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// MenuPermsByUserID collects the raw perms columns reachable through
// user -> role -> menu. A column may hold a comma-delimited list; splitting
// is the resolver's job.
func (r *Repository) MenuPermsByUserID(ctx context.Context, userID int64) ([]string, error) {
	var perms []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT m.perms
		FROM sys_menu m
		JOIN sys_role_menu rm ON m.menu_id = rm.menu_id
		JOIN sys_user_role ur ON ur.role_id = rm.role_id
		WHERE ur.user_id = ?
		  AND m.status = '0'
		  AND m.perms IS NOT NULL
		  AND m.perms != ''`, userID).Scan(&perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// RolesByUserID returns the user's live roles including the data_scope
// column the filter builder needs.
func (r *Repository) RolesByUserID(ctx context.Context, userID int64) ([]roleModel.Role, error) {
	var roles []roleModel.Role
	err := r.db.WithContext(ctx).Raw(`
		SELECT r.*
		FROM sys_role r
		JOIN sys_user_role ur ON ur.role_id = r.role_id
		WHERE ur.user_id = ?
		  AND r.del_flag = '0'
		  AND r.status = '0'`, userID).Scan(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *Repository) UserIDsByRoleID(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT user_id FROM sys_user_role WHERE role_id = ?`, roleID).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
