package postgres

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

// List applies filters plus the caller-built data-scope predicate. The query
// aliases sys_user as u and sys_dept as d to match the predicate builder.
func (r *UserRepository) List(ctx context.Context, query user.QueryDTO, dataScope string) ([]*userModel.User, int64, error) {
	q := r.db.WithContext(ctx).
		Table("sys_user AS u").
		Joins("LEFT JOIN sys_dept d ON u.dept_id = d.dept_id").
		Where("u.del_flag = '0'")

	if query.UserName != "" {
		q = q.Where("u.user_name LIKE ?", "%"+query.UserName+"%")
	}
	if query.Phonenumber != "" {
		q = q.Where("u.phonenumber LIKE ?", "%"+query.Phonenumber+"%")
	}
	if query.Status != "" {
		q = q.Where("u.status = ?", query.Status)
	}
	if query.DeptID != 0 {
		q = q.Where("u.dept_id = ? OR d.dept_id IN (SELECT dept_id FROM sys_dept WHERE ',' || ancestors || ',' LIKE ?)",
			query.DeptID, "%,"+strconv.FormatInt(query.DeptID, 10)+",%")
	}
	if dataScope != "" {
		q = q.Where(dataScope)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*userModel.User
	err := q.Select("u.*").
		Order("u.user_id ASC").
		Limit(query.PageSize).
		Offset((query.PageNum - 1) * query.PageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*userModel.User, error) {
	var u userModel.User
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND del_flag = '0'", userID).
		First(&u).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsUserName(ctx context.Context, userName string, excludeID int64) (bool, error) {
	return r.exists(ctx, "user_name = ?", userName, excludeID)
}

func (r *UserRepository) ExistsEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *UserRepository) ExistsPhone(ctx context.Context, phone string, excludeID int64) (bool, error) {
	return r.exists(ctx, "phonenumber = ?", phone, excludeID)
}

func (r *UserRepository) exists(ctx context.Context, cond string, value string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("del_flag = '0'").
		Where(cond, value)
	if excludeID != 0 {
		q = q.Where("user_id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Create(ctx context.Context, u *userModel.User, roleIDs, postIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if err := insertRoles(tx, u.UserID, roleIDs); err != nil {
			return err
		}
		return insertPosts(tx, u.UserID, postIDs)
	})
}

func (r *UserRepository) Update(ctx context.Context, u *userModel.User, roleIDs, postIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", u.UserID).Delete(&userModel.UserRole{}).Error; err != nil {
			return err
		}
		if err := insertRoles(tx, u.UserID, roleIDs); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", u.UserID).Delete(&userModel.UserPost{}).Error; err != nil {
			return err
		}
		return insertPosts(tx, u.UserID, postIDs)
	})
}

func (r *UserRepository) SoftDelete(ctx context.Context, userIDs []int64) error {
	return r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("user_id IN ?", userIDs).
		Update("del_flag", "2").Error
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	return r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("user_id = ?", userID).
		Update("password", hash).Error
}

func (r *UserRepository) UpdateStatus(ctx context.Context, userID int64, status string) error {
	return r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("user_id = ?", userID).
		Update("status", status).Error
}

func (r *UserRepository) RoleIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&userModel.UserRole{}).
		Where("user_id = ?", userID).
		Pluck("role_id", &ids).Error
	return ids, err
}

func (r *UserRepository) PostIDsByUserID(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&userModel.UserPost{}).
		Where("user_id = ?", userID).
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *UserRepository) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&userModel.UserRole{}).Error; err != nil {
			return err
		}
		return insertRoles(tx, userID, roleIDs)
	})
}

func insertRoles(tx *gorm.DB, userID int64, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]userModel.UserRole, 0, len(roleIDs))
	for _, id := range roleIDs {
		rows = append(rows, userModel.UserRole{UserID: userID, RoleID: id})
	}
	return tx.Create(&rows).Error
}

func insertPosts(tx *gorm.DB, userID int64, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	rows := make([]userModel.UserPost, 0, len(postIDs))
	for _, id := range postIDs {
		rows = append(rows, userModel.UserPost{UserID: userID, PostID: id})
	}
	return tx.Create(&rows).Error
}
