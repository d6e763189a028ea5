package operlog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/admin-management/internal/transport"
	"github.com/frahmantamala/admin-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := QueryDTO{
		Title:    r.URL.Query().Get("title"),
		OperName: r.URL.Query().Get("operName"),
	}
	if v := r.URL.Query().Get("businessType"); v != "" {
		query.BusinessType, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("status"); v != "" {
		if status, err := strconv.Atoi(v); err == nil {
			query.Status = &status
		}
	}
	query.PageNum, _ = strconv.Atoi(r.URL.Query().Get("pageNum"))
	query.PageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))

	page, err := h.Service.List(r.Context(), query)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Clear(r.Context()); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "operation logs cleared"})
}
