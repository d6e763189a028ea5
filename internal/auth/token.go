package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/admin-management/internal"
)

// Claims is the fixed token payload schema: the opaque session id plus the
// standard timing claims. Anything else is rejected at parse time.
type Claims struct {
	LoginUserKey string `json:"login_user_key"`
	jwt.RegisteredClaims
}

// JWTTokenService signs session references with a server-held HMAC secret.
type JWTTokenService struct {
	secret   []byte
	duration time.Duration
}

func NewJWTTokenService(secret string, duration time.Duration) (*JWTTokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	return &JWTTokenService{
		secret:   []byte(secret),
		duration: duration,
	}, nil
}

// Duration is the token's own validity window, independent of the session
// TTL in the key-value store.
func (s *JWTTokenService) Duration() time.Duration {
	return s.duration
}

func (s *JWTTokenService) Mint(sessionID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		LoginUserKey: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature and expiry and returns the embedded session id.
// Failures map to distinct unauthorized errors so clients can tell expiry
// from tampering; none of them ever fall back to anonymous access.
func (s *JWTTokenService) Validate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", internal.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", internal.ErrBadSignature
		default:
			return "", internal.ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.LoginUserKey == "" {
		return "", internal.ErrInvalidToken
	}
	return claims.LoginUserKey, nil
}
