// Package captcha issues and verifies one-time numeric captcha codes backed
// by the key-value store.
package captcha

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/frahmantamala/admin-management/internal"
)

const keyPrefix = "captcha_codes:"

type Service struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewService(client *goredis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Service{client: client, ttl: ttl}
}

type Challenge struct {
	UUID string `json:"uuid"`
	Img  string `json:"img"`
}

// Generate creates a 4-digit code, stores it under a fresh uuid with the
// captcha TTL, and renders the SVG shown to the client.
func (s *Service) Generate(ctx context.Context) (*Challenge, error) {
	code := randomDigits(4)
	id := uuid.NewString()

	if err := s.client.Set(ctx, keyPrefix+id, strings.ToLower(code), s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store captcha: %w", err)
	}

	return &Challenge{
		UUID: id,
		Img:  renderSVG(code),
	}, nil
}

// Verify consumes the stored code (one-time use) and compares it
// case-insensitively. A missing or expired code fails the same way as a
// wrong answer.
func (s *Service) Verify(ctx context.Context, captchaID, code string) error {
	key := keyPrefix + captchaID

	stored, err := s.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return internal.ErrCaptchaInvalid
	}
	if err != nil {
		return internal.NewInternalError("failed to read captcha", err)
	}

	// One-time consumption regardless of match outcome.
	s.client.Del(ctx, key)

	if stored != strings.ToLower(code) {
		return internal.ErrCaptchaInvalid
	}
	return nil
}

func randomDigits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			// crypto/rand failing means the platform is broken; fall back
			// to a fixed digit rather than panicking a login path.
			b.WriteByte('0')
			continue
		}
		b.WriteString(d.String())
	}
	return b.String()
}

func renderSVG(code string) string {
	const width, height = 100, 40
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, width, height)
	b.WriteString(`<rect width="100%" height="100%" fill="#f5f5f5"/>`)
	for i, ch := range code {
		fmt.Fprintf(&b, `<text x="%d" y="28" font-size="24" fill="#333">%c</text>`, 12+i*22, ch)
	}
	b.WriteString(`</svg>`)
	return b.String()
}
