package postgres

import (
	"context"

	"gorm.io/gorm"

	menuModel "github.com/frahmantamala/admin-management/internal/core/datamodel/menu"
	roleModel "github.com/frahmantamala/admin-management/internal/core/datamodel/role"
	"github.com/frahmantamala/admin-management/internal/menu"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) menu.RepositoryAPI {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) List(ctx context.Context, query menu.QueryDTO) ([]*menuModel.Menu, error) {
	q := r.db.WithContext(ctx).Model(&menuModel.Menu{})

	if query.MenuName != "" {
		q = q.Where("menu_name LIKE ?", "%"+query.MenuName+"%")
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	var rows []*menuModel.Menu
	err := q.Order("parent_id ASC, order_num ASC, menu_id ASC").Find(&rows).Error
	return rows, err
}

func (r *MenuRepository) FindByID(ctx context.Context, menuID int64) (*menuModel.Menu, error) {
	var row menuModel.Menu
	err := r.db.WithContext(ctx).Where("menu_id = ?", menuID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *MenuRepository) Create(ctx context.Context, row *menuModel.Menu) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *MenuRepository) Update(ctx context.Context, row *menuModel.Menu) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *MenuRepository) Delete(ctx context.Context, menuID int64) error {
	return r.db.WithContext(ctx).Where("menu_id = ?", menuID).Delete(&menuModel.Menu{}).Error
}

func (r *MenuRepository) HasChildren(ctx context.Context, menuID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&menuModel.Menu{}).
		Where("parent_id = ?", menuID).
		Count(&count).Error
	return count > 0, err
}

func (r *MenuRepository) CountRoleRefs(ctx context.Context, menuID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&roleModel.RoleMenu{}).
		Where("menu_id = ?", menuID).
		Count(&count).Error
	return count, err
}
