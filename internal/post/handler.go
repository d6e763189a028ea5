package post

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

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
		PostCode: r.URL.Query().Get("postCode"),
		PostName: r.URL.Query().Get("postName"),
		Status:   r.URL.Query().Get("status"),
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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	post, err := h.Service.Get(r.Context(), postID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreatePostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, post)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdatePostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Update(r.Context(), dto); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "post updated"})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	postIDs, err := parseIDList(chi.URLParam(r, "ids"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post IDs")
		return
	}

	if err := h.Service.Delete(r.Context(), postIDs); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "posts deleted"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if vErr, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, vErr.Msg)
		return
	}
	h.WriteAppError(w, err)
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
