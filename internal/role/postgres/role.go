package postgres

import (
	"context"

	"gorm.io/gorm"

	roleModel "github.com/frahmantamala/admin-management/internal/core/datamodel/role"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/role"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) List(ctx context.Context, query role.QueryDTO) ([]*roleModel.Role, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&roleModel.Role{}).
		Where("del_flag = '0'")

	if query.RoleName != "" {
		q = q.Where("role_name LIKE ?", "%"+query.RoleName+"%")
	}
	if query.RoleKey != "" {
		q = q.Where("role_key LIKE ?", "%"+query.RoleKey+"%")
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*roleModel.Role
	err := q.Order("role_sort ASC, role_id ASC").
		Limit(query.PageSize).
		Offset((query.PageNum - 1) * query.PageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *RoleRepository) FindByID(ctx context.Context, roleID int64) (*roleModel.Role, error) {
	var row roleModel.Role
	err := r.db.WithContext(ctx).
		Where("role_id = ? AND del_flag = '0'", roleID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *RoleRepository) ExistsName(ctx context.Context, roleName string, excludeID int64) (bool, error) {
	return r.exists(ctx, "role_name = ?", roleName, excludeID)
}

func (r *RoleRepository) ExistsKey(ctx context.Context, roleKey string, excludeID int64) (bool, error) {
	return r.exists(ctx, "role_key = ?", roleKey, excludeID)
}

func (r *RoleRepository) exists(ctx context.Context, cond, value string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&roleModel.Role{}).
		Where("del_flag = '0'").
		Where(cond, value)
	if excludeID != 0 {
		q = q.Where("role_id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *RoleRepository) Create(ctx context.Context, row *roleModel.Role, menuIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return insertMenus(tx, row.RoleID, menuIDs)
	})
}

func (r *RoleRepository) Update(ctx context.Context, row *roleModel.Role, menuIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", row.RoleID).Delete(&roleModel.RoleMenu{}).Error; err != nil {
			return err
		}
		return insertMenus(tx, row.RoleID, menuIDs)
	})
}

func (r *RoleRepository) UpdateDataScope(ctx context.Context, row *roleModel.Role, deptIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(row).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", row.RoleID).Delete(&roleModel.RoleDept{}).Error; err != nil {
			return err
		}
		if len(deptIDs) == 0 {
			return nil
		}
		links := make([]roleModel.RoleDept, 0, len(deptIDs))
		for _, id := range deptIDs {
			links = append(links, roleModel.RoleDept{RoleID: row.RoleID, DeptID: id})
		}
		return tx.Create(&links).Error
	})
}

func (r *RoleRepository) UpdateStatus(ctx context.Context, roleID int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&roleModel.Role{}).
		Where("role_id = ?", roleID).
		Update("status", status).Error
}

func (r *RoleRepository) SoftDelete(ctx context.Context, roleIDs []int64) error {
	return r.db.WithContext(ctx).
		Model(&roleModel.Role{}).
		Where("role_id IN ?", roleIDs).
		Update("del_flag", "2").Error
}

func (r *RoleRepository) CountUsersByRoleID(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userModel.UserRole{}).
		Joins("JOIN sys_user u ON u.user_id = sys_user_role.user_id AND u.del_flag = '0'").
		Where("sys_user_role.role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

func (r *RoleRepository) UserIDsByRoleID(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&userModel.UserRole{}).
		Where("role_id = ?", roleID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *RoleRepository) MenuIDsByRoleID(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&roleModel.RoleMenu{}).
		Where("role_id = ?", roleID).
		Pluck("menu_id", &ids).Error
	return ids, err
}

func (r *RoleRepository) AllocatedUsers(ctx context.Context, roleID int64, userName string) ([]*userModel.User, error) {
	q := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Joins("JOIN sys_user_role ur ON ur.user_id = sys_user.user_id").
		Where("ur.role_id = ? AND sys_user.del_flag = '0'", roleID)
	if userName != "" {
		q = q.Where("sys_user.user_name LIKE ?", "%"+userName+"%")
	}

	var rows []*userModel.User
	err := q.Order("sys_user.user_id ASC").Find(&rows).Error
	return rows, err
}

func (r *RoleRepository) UnallocatedUsers(ctx context.Context, roleID int64, userName string) ([]*userModel.User, error) {
	q := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("del_flag = '0'").
		Where("user_id NOT IN (SELECT user_id FROM sys_user_role WHERE role_id = ?)", roleID)
	if userName != "" {
		q = q.Where("user_name LIKE ?", "%"+userName+"%")
	}

	var rows []*userModel.User
	err := q.Order("user_id ASC").Find(&rows).Error
	return rows, err
}

func (r *RoleRepository) GrantUsers(ctx context.Context, roleID int64, userIDs []int64) error {
	links := make([]userModel.UserRole, 0, len(userIDs))
	for _, id := range userIDs {
		links = append(links, userModel.UserRole{UserID: id, RoleID: roleID})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

func (r *RoleRepository) RevokeUsers(ctx context.Context, roleID int64, userIDs []int64) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND user_id IN ?", roleID, userIDs).
		Delete(&userModel.UserRole{}).Error
}

func insertMenus(tx *gorm.DB, roleID int64, menuIDs []int64) error {
	if len(menuIDs) == 0 {
		return nil
	}
	links := make([]roleModel.RoleMenu, 0, len(menuIDs))
	for _, id := range menuIDs {
		links = append(links, roleModel.RoleMenu{RoleID: roleID, MenuID: id})
	}
	return tx.Create(&links).Error
}
