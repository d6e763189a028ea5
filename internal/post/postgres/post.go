package postgres

import (
	"context"

	"gorm.io/gorm"

	postModel "github.com/frahmantamala/admin-management/internal/core/datamodel/post"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/post"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) post.RepositoryAPI {
	return &PostRepository{db: db}
}

func (r *PostRepository) List(ctx context.Context, query post.QueryDTO) ([]*postModel.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&postModel.Post{})

	if query.PostCode != "" {
		q = q.Where("post_code LIKE ?", "%"+query.PostCode+"%")
	}
	if query.PostName != "" {
		q = q.Where("post_name LIKE ?", "%"+query.PostName+"%")
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*postModel.Post
	err := q.Order("post_sort ASC, post_id ASC").
		Limit(query.PageSize).
		Offset((query.PageNum - 1) * query.PageSize).
		Find(&rows).Error
	return rows, total, err
}

func (r *PostRepository) FindByID(ctx context.Context, postID int64) (*postModel.Post, error) {
	var row postModel.Post
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *PostRepository) ExistsName(ctx context.Context, postName string, excludeID int64) (bool, error) {
	return r.exists(ctx, "post_name = ?", postName, excludeID)
}

func (r *PostRepository) ExistsCode(ctx context.Context, postCode string, excludeID int64) (bool, error) {
	return r.exists(ctx, "post_code = ?", postCode, excludeID)
}

func (r *PostRepository) exists(ctx context.Context, cond, value string, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&postModel.Post{}).
		Where(cond, value)
	if excludeID != 0 {
		q = q.Where("post_id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *PostRepository) Create(ctx context.Context, row *postModel.Post) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *PostRepository) Update(ctx context.Context, row *postModel.Post) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *PostRepository) Delete(ctx context.Context, postIDs []int64) error {
	return r.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Delete(&postModel.Post{}).Error
}

func (r *PostRepository) CountUsersByPostID(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userModel.UserPost{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
