package postgres

import (
	"context"

	"gorm.io/gorm"

	operlogModel "github.com/frahmantamala/admin-management/internal/core/datamodel/operlog"
	"github.com/frahmantamala/admin-management/internal/operlog"
)

type OperLogRepository struct {
	db *gorm.DB
}

func NewOperLogRepository(db *gorm.DB) operlog.RepositoryAPI {
	return &OperLogRepository{db: db}
}

func (r *OperLogRepository) Insert(ctx context.Context, entry *operlogModel.OperLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *OperLogRepository) List(ctx context.Context, query operlog.QueryDTO) ([]*operlogModel.OperLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&operlogModel.OperLog{})

	if query.Title != "" {
		q = q.Where("title LIKE ?", "%"+query.Title+"%")
	}
	if query.OperName != "" {
		q = q.Where("oper_name LIKE ?", "%"+query.OperName+"%")
	}
	if query.BusinessType != 0 {
		q = q.Where("business_type = ?", query.BusinessType)
	}
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*operlogModel.OperLog
	err := q.Order("oper_id DESC").
		Limit(query.PageSize).
		Offset((query.PageNum - 1) * query.PageSize).
		Find(&rows).Error
	return rows, total, err
}

// Clear truncates the audit table.
func (r *OperLogRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("1 = 1").
		Delete(&operlogModel.OperLog{}).Error
}
