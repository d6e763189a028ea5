package operlog

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/admin-management/internal"
	operlogModel "github.com/frahmantamala/admin-management/internal/core/datamodel/operlog"
	"github.com/frahmantamala/admin-management/internal/core/events"
)

type QueryDTO struct {
	Title        string `json:"title"`
	OperName     string `json:"operName"`
	BusinessType int    `json:"businessType"`
	Status       *int   `json:"status"`
	PageNum      int    `json:"pageNum"`
	PageSize     int    `json:"pageSize"`
}

func (q *QueryDTO) Normalize() {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}
}

type RepositoryAPI interface {
	Insert(ctx context.Context, entry *operlogModel.OperLog) error
	List(ctx context.Context, query QueryDTO) ([]*operlogModel.OperLog, int64, error)
	Clear(ctx context.Context) error
}

type PageResult struct {
	Rows  []*operlogModel.OperLog `json:"rows"`
	Total int64                   `json:"total"`
}

// Service persists audit entries published on the event bus and serves the
// log management endpoints.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterSubscriber wires the service onto the bus. Persistence failures
// are logged and swallowed; the audit trail never fails a request.
func (s *Service) RegisterSubscriber(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeOperation, s.handleOperation)
}

func (s *Service) handleOperation(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload().(events.OperationPayload)
	if !ok {
		s.logger.Error("operation event with unexpected payload", "event_id", event.EventID())
		return nil
	}

	entry := &operlogModel.OperLog{
		Title:         payload.Title,
		BusinessType:  payload.BusinessType,
		Method:        payload.Method,
		RequestMethod: payload.RequestMethod,
		OperName:      payload.OperName,
		OperURL:       payload.OperURL,
		OperIP:        payload.OperIP,
		OperParam:     payload.OperParam,
		Status:        payload.Status,
		ErrorMsg:      payload.ErrorMsg,
		OperTime:      payload.OperTime,
		CostTime:      payload.CostTime,
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to persist operation log", "title", payload.Title, "error", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, query QueryDTO) (*PageResult, error) {
	query.Normalize()
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, internal.NewInternalError("failed to list operation logs", err)
	}
	return &PageResult{Rows: rows, Total: total}, nil
}

func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return internal.NewInternalError("failed to clear operation logs", err)
	}
	return nil
}
