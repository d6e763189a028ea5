package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/admin-management/internal"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/session"
)

// Service performs credential verification and session lifecycle management.
type Service struct {
	users      UserRepository
	resolver   PermissionResolver
	sessions   session.Store
	tokens     TokenService
	captcha    CaptchaVerifier
	tokenTTL   time.Duration
	bcryptCost int
	logger     *slog.Logger
}

func NewService(
	users UserRepository,
	resolver PermissionResolver,
	sessions session.Store,
	tokens TokenService,
	captcha CaptchaVerifier,
	tokenTTL time.Duration,
	bcryptCost int,
	logger *slog.Logger,
) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		resolver:   resolver,
		sessions:   sessions,
		tokens:     tokens,
		captcha:    captcha,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login verifies the captcha and credentials, resolves the user's effective
// permissions, writes the session record, and mints the token referencing it.
func (s *Service) Login(ctx context.Context, dto LoginDTO, clientIP, userAgent string) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if s.captcha != nil && dto.UUID != "" {
		if err := s.captcha.Verify(ctx, dto.UUID, dto.Code); err != nil {
			return nil, err
		}
	}

	user, err := s.verifyCredentials(ctx, dto.UserName, dto.Password)
	if err != nil {
		return nil, err
	}

	loginUser, err := s.buildLoginUser(ctx, user, clientIP, userAgent)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve permissions", err)
	}

	if err := s.sessions.Put(ctx, loginUser); err != nil {
		return nil, internal.NewInternalError("failed to store session", err)
	}

	token, err := s.tokens.Mint(loginUser.Token)
	if err != nil {
		return nil, internal.NewInternalError("failed to mint token", err)
	}

	// Best effort; a failed last-login stamp must not fail the login.
	if err := s.users.UpdateLoginInfo(ctx, user.UserID, clientIP, time.Now()); err != nil {
		s.logger.Warn("failed to update login info", "user_id", user.UserID, "error", err)
	}

	return &LoginResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokenTTL.Seconds()),
		User:      loginUser.User,
	}, nil
}

// verifyCredentials distinguishes missing, deleted, and disabled accounts
// internally, but missing accounts and bad passwords share the same
// user-facing error.
func (s *Service) verifyCredentials(ctx context.Context, userName, password string) (*userModel.User, error) {
	user, err := s.users.FindByUserName(ctx, userName)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return nil, internal.ErrInvalidCredentials
	}
	if user.DelFlag == "2" {
		return nil, internal.ErrUserDeleted
	}
	if user.Status == "1" {
		return nil, internal.ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) buildLoginUser(ctx context.Context, user *userModel.User, clientIP, userAgent string) (*session.LoginUser, error) {
	perms, err := s.resolver.ResolveByUserID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	roleKeys, roleIDs, err := s.resolver.RoleKeysByUserID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	browser, os := parseUserAgent(userAgent)
	return &session.LoginUser{
		Token:       newSessionID(),
		UserID:      user.UserID,
		DeptID:      user.DeptID,
		User:        profileOf(user),
		RoleIDs:     roleIDs,
		RoleKeys:    roleKeys,
		Permissions: perms,
		IPAddr:      clientIP,
		Browser:     browser,
		OS:          os,
	}, nil
}

// GetInfo reads profile, roles, and permissions from the session record.
// Permissions are intentionally not re-derived from the database here.
func (s *Service) GetInfo(loginUser *session.LoginUser) *InfoResult {
	return &InfoResult{
		User:        loginUser.User,
		Roles:       loginUser.RoleKeys,
		Permissions: loginUser.Permissions,
	}
}

// Logout deletes the session record. Idempotent: logging out an already
// absent session succeeds.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return internal.NewInternalError("failed to delete session", err)
	}
	return nil
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func profileOf(user *userModel.User) session.UserProfile {
	return session.UserProfile{
		UserID:      user.UserID,
		UserName:    user.UserName,
		NickName:    user.NickName,
		Avatar:      user.Avatar,
		Email:       user.Email,
		Phonenumber: user.Phonenumber,
		Sex:         user.Sex,
		DeptID:      user.DeptID,
	}
}

// newSessionID returns an opaque identifier; dashes are stripped to match
// the key format used by the store.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func parseUserAgent(userAgent string) (browser, os string) {
	browser, os = "Unknown", "Unknown"

	switch {
	case strings.Contains(userAgent, "Edg"):
		browser = "Edge"
	case strings.Contains(userAgent, "Chrome"):
		browser = "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		browser = "Firefox"
	case strings.Contains(userAgent, "Safari"):
		browser = "Safari"
	}

	switch {
	case strings.Contains(userAgent, "Windows"):
		os = "Windows"
	case strings.Contains(userAgent, "Mac"):
		os = "MacOS"
	case strings.Contains(userAgent, "Android"):
		os = "Android"
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iOS"):
		os = "iOS"
	case strings.Contains(userAgent, "Linux"):
		os = "Linux"
	}

	return browser, os
}
