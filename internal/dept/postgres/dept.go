package postgres

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	deptModel "github.com/frahmantamala/admin-management/internal/core/datamodel/dept"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/dept"
)

type DeptRepository struct {
	db *gorm.DB
}

func NewDeptRepository(db *gorm.DB) dept.RepositoryAPI {
	return &DeptRepository{db: db}
}

func (r *DeptRepository) ListActive(ctx context.Context) ([]*deptModel.Dept, error) {
	var rows []*deptModel.Dept
	err := r.db.WithContext(ctx).
		Where("del_flag = '0'").
		Order("parent_id ASC, order_num ASC, dept_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *DeptRepository) FindByID(ctx context.Context, deptID int64) (*deptModel.Dept, error) {
	var row deptModel.Dept
	err := r.db.WithContext(ctx).
		Where("dept_id = ? AND del_flag = '0'", deptID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *DeptRepository) ExistsName(ctx context.Context, parentID int64, deptName string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&deptModel.Dept{}).
		Where("del_flag = '0' AND parent_id = ? AND dept_name = ?", parentID, deptName)
	if excludeID != 0 {
		q = q.Where("dept_id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *DeptRepository) Create(ctx context.Context, row *deptModel.Dept) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *DeptRepository) Update(ctx context.Context, row *deptModel.Dept) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *DeptRepository) UpdateAncestors(ctx context.Context, deptID int64, ancestors string) error {
	return r.db.WithContext(ctx).
		Model(&deptModel.Dept{}).
		Where("dept_id = ?", deptID).
		Update("ancestors", ancestors).Error
}

func (r *DeptRepository) SoftDelete(ctx context.Context, deptID int64) error {
	return r.db.WithContext(ctx).
		Model(&deptModel.Dept{}).
		Where("dept_id = ?", deptID).
		Update("del_flag", "2").Error
}

// Descendants matches rows whose ancestors path contains the id as an exact
// comma-bounded segment.
func (r *DeptRepository) Descendants(ctx context.Context, deptID int64) ([]*deptModel.Dept, error) {
	var rows []*deptModel.Dept
	err := r.db.WithContext(ctx).
		Where("del_flag = '0'").
		Where("',' || ancestors || ',' LIKE ?", "%,"+strconv.FormatInt(deptID, 10)+",%").
		Order("dept_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *DeptRepository) HasChildren(ctx context.Context, deptID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&deptModel.Dept{}).
		Where("del_flag = '0' AND parent_id = ?", deptID).
		Count(&count).Error
	return count > 0, err
}

func (r *DeptRepository) CountUsers(ctx context.Context, deptID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userModel.User{}).
		Where("del_flag = '0' AND dept_id = ?", deptID).
		Count(&count).Error
	return count, err
}
