package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/admin-management/internal/captcha"
	"github.com/frahmantamala/admin-management/internal/session"
	"github.com/frahmantamala/admin-management/internal/transport"
	"github.com/frahmantamala/admin-management/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, clientIP, userAgent string) (*LoginResult, error)
	GetInfo(loginUser *session.LoginUser) *InfoResult
	Logout(ctx context.Context, sessionID string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Captcha *captcha.Service
}

func NewHandler(svc ServiceAPI, captchaSvc *captcha.Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		Captcha:     captchaSvc,
	}
}

// CaptchaImage is public: it issues the challenge consumed by Login.
func (h *Handler) CaptchaImage(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.Captcha.Generate(r.Context())
	if err != nil {
		h.Logger.Error("captcha generation failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.WriteJSON(w, http.StatusOK, challenge)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Login(r.Context(), dto, transport.ClientIP(r), r.UserAgent())
	if err != nil {
		h.Logger.Warn("login failed", "username", dto.UserName, "error", err)
		if _, ok := err.(ValidationError); ok {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) GetInfo(w http.ResponseWriter, r *http.Request) {
	loginUser, ok := session.FromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	h.WriteJSON(w, http.StatusOK, h.Service.GetInfo(loginUser))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	loginUser, ok := session.FromContext(r.Context())
	if !ok {
		// No live session resolves to the same outcome as a logout.
		h.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
		return
	}

	if err := h.Service.Logout(r.Context(), loginUser.Token); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
