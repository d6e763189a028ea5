package auth

import (
	"context"
	"time"

	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/session"
)

// TokenService mints and validates the signed client-held reference to a
// session record. The token carries only the opaque session id; all
// authorization data lives server-side in the Session Store, so revocation
// is a session delete, never a token blacklist.
type TokenService interface {
	Mint(sessionID string) (string, error)
	Validate(token string) (string, error)
}

// UserRepository is the relational read/write surface the auth service
// needs. FindByUserName must return soft-deleted and disabled rows so the
// service can distinguish those states from a plain miss.
type UserRepository interface {
	FindByUserName(ctx context.Context, userName string) (*userModel.User, error)
	FindByID(ctx context.Context, userID int64) (*userModel.User, error)
	UpdateLoginInfo(ctx context.Context, userID int64, ip string, at time.Time) error
}

// PermissionResolver computes permission and role sets at login/refresh time.
type PermissionResolver interface {
	ResolveByUserID(ctx context.Context, userID int64) ([]string, error)
	RoleKeysByUserID(ctx context.Context, userID int64) ([]string, []int64, error)
}

// CaptchaVerifier consumes a one-time captcha answer.
type CaptchaVerifier interface {
	Verify(ctx context.Context, captchaID, code string) error
}

type LoginResult struct {
	Token     string              `json:"token"`
	TokenType string              `json:"tokenType"`
	ExpiresIn int64               `json:"expiresIn"`
	User      session.UserProfile `json:"user"`
}

type InfoResult struct {
	User        session.UserProfile `json:"user"`
	Roles       []string            `json:"roles"`
	Permissions []string            `json:"permissions"`
}
