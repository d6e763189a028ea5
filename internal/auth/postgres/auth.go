package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUserName returns the row whatever its status or delete flag; the
// service needs those fields to distinguish disabled and deleted accounts.
func (r *Repository) FindByUserName(ctx context.Context, userName string) (*userModel.User, error) {
	var user userModel.User
	err := r.db.WithContext(ctx).
		Where("user_name = ?", userName).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, userID int64) (*userModel.User, error) {
	var user userModel.User
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND del_flag = '0'", userID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateLoginInfo(ctx context.Context, userID int64, ip string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"login_ip":   ip,
			"login_date": at,
		}).Error
}
