package post

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/admin-management/internal"
	postModel "github.com/frahmantamala/admin-management/internal/core/datamodel/post"
)

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type QueryDTO struct {
	PostCode string `json:"postCode"`
	PostName string `json:"postName"`
	Status   string `json:"status"`
	PageNum  int    `json:"pageNum"`
	PageSize int    `json:"pageSize"`
}

func (q *QueryDTO) Normalize() {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}
}

type CreatePostDTO struct {
	PostCode string `json:"postCode"`
	PostName string `json:"postName"`
	PostSort int    `json:"postSort"`
	Status   string `json:"status"`
	Remark   string `json:"remark"`
}

func (d CreatePostDTO) Validate() error {
	if d.PostCode == "" {
		return ValidationError{Msg: "postCode is required"}
	}
	if d.PostName == "" {
		return ValidationError{Msg: "postName is required"}
	}
	return nil
}

type UpdatePostDTO struct {
	PostID   int64  `json:"postId"`
	PostCode string `json:"postCode"`
	PostName string `json:"postName"`
	PostSort int    `json:"postSort"`
	Status   string `json:"status"`
	Remark   string `json:"remark"`
}

func (d UpdatePostDTO) Validate() error {
	if d.PostID == 0 {
		return ValidationError{Msg: "postId is required"}
	}
	return CreatePostDTO{PostCode: d.PostCode, PostName: d.PostName}.Validate()
}

type RepositoryAPI interface {
	List(ctx context.Context, query QueryDTO) ([]*postModel.Post, int64, error)
	FindByID(ctx context.Context, postID int64) (*postModel.Post, error)
	ExistsName(ctx context.Context, postName string, excludeID int64) (bool, error)
	ExistsCode(ctx context.Context, postCode string, excludeID int64) (bool, error)
	Create(ctx context.Context, post *postModel.Post) error
	Update(ctx context.Context, post *postModel.Post) error
	Delete(ctx context.Context, postIDs []int64) error
	CountUsersByPostID(ctx context.Context, postID int64) (int64, error)
}

type PageResult struct {
	Rows  []*postModel.Post `json:"rows"`
	Total int64             `json:"total"`
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, query QueryDTO) (*PageResult, error) {
	query.Normalize()
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, internal.NewInternalError("failed to list posts", err)
	}
	return &PageResult{Rows: rows, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, postID int64) (*postModel.Post, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load post", err)
	}
	if post == nil {
		return nil, internal.NewNotFoundError("post does not exist", internal.ErrCodePostNotFound)
	}
	return post, nil
}

func (s *Service) Create(ctx context.Context, dto CreatePostDTO) (*postModel.Post, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, dto.PostName, dto.PostCode, 0); err != nil {
		return nil, err
	}

	status := dto.Status
	if status == "" {
		status = "0"
	}

	post := &postModel.Post{
		PostCode: dto.PostCode,
		PostName: dto.PostName,
		PostSort: dto.PostSort,
		Status:   status,
		Remark:   dto.Remark,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, internal.NewInternalError("failed to create post", err)
	}
	return post, nil
}

func (s *Service) Update(ctx context.Context, dto UpdatePostDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	post, err := s.Get(ctx, dto.PostID)
	if err != nil {
		return err
	}
	if err := s.checkUnique(ctx, dto.PostName, dto.PostCode, dto.PostID); err != nil {
		return err
	}

	post.PostCode = dto.PostCode
	post.PostName = dto.PostName
	post.PostSort = dto.PostSort
	post.Status = dto.Status
	post.Remark = dto.Remark

	if err := s.repo.Update(ctx, post); err != nil {
		return internal.NewInternalError("failed to update post", err)
	}
	return nil
}

// Delete refuses posts that are still assigned to users.
func (s *Service) Delete(ctx context.Context, postIDs []int64) error {
	for _, id := range postIDs {
		post, err := s.Get(ctx, id)
		if err != nil {
			return err
		}

		count, err := s.repo.CountUsersByPostID(ctx, id)
		if err != nil {
			return internal.NewInternalError("failed to count post users", err)
		}
		if count > 0 {
			return internal.NewValidationError(post.PostName+" is assigned to users and cannot be deleted", internal.ErrCodePostAssigned)
		}
	}

	if err := s.repo.Delete(ctx, postIDs); err != nil {
		return internal.NewInternalError("failed to delete posts", err)
	}
	return nil
}

func (s *Service) checkUnique(ctx context.Context, postName, postCode string, excludeID int64) error {
	exists, err := s.repo.ExistsName(ctx, postName, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check post name", err)
	}
	if exists {
		return internal.NewValidationError("post name '"+postName+"' already exists", internal.ErrCodePostNameExists)
	}

	exists, err = s.repo.ExistsCode(ctx, postCode, excludeID)
	if err != nil {
		return internal.NewInternalError("failed to check post code", err)
	}
	if exists {
		return internal.NewValidationError("post code '"+postCode+"' already exists", internal.ErrCodePostCodeExists)
	}
	return nil
}
