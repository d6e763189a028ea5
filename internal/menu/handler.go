package menu

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

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
		MenuName: r.URL.Query().Get("menuName"),
		Status:   r.URL.Query().Get("status"),
	}

	menus, err := h.Service.List(r.Context(), query)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, menus)
}

func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Service.Tree(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tree)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	menuID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid menu ID")
		return
	}

	menu, err := h.Service.Get(r.Context(), menuID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, menu)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateMenuDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	menu, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, menu)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateMenuDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Update(r.Context(), dto); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "menu updated"})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	menuID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid menu ID")
		return
	}

	if err := h.Service.Delete(r.Context(), menuID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "menu deleted"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if vErr, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, vErr.Msg)
		return
	}
	h.WriteAppError(w, err)
}
