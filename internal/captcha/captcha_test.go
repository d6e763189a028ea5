package captcha_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	goredis "github.com/redis/go-redis/v9"

	"github.com/frahmantamala/admin-management/internal"
	"github.com/frahmantamala/admin-management/internal/captcha"
)

func TestCaptcha(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Captcha Suite")
}

var _ = Describe("Captcha Service", func() {
	var (
		mr     *miniredis.Miniredis
		client *goredis.Client
		svc    *captcha.Service
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		client = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		svc = captcha.NewService(client, 2*time.Minute)
		ctx = context.Background()
	})

	AfterEach(func() {
		client.Close()
		mr.Close()
	})

	It("should generate a challenge with an SVG image", func() {
		ch, err := svc.Generate(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(ch.UUID).NotTo(BeEmpty())
		Expect(ch.Img).To(ContainSubstring("<svg"))
	})

	It("should verify the stored code once and consume it", func() {
		ch, err := svc.Generate(ctx)
		Expect(err).NotTo(HaveOccurred())

		code, err := mr.Get("captcha_codes:" + ch.UUID)
		Expect(err).NotTo(HaveOccurred())

		Expect(svc.Verify(ctx, ch.UUID, code)).To(Succeed())

		// second attempt with the same answer fails: one-time use
		Expect(svc.Verify(ctx, ch.UUID, code)).To(MatchError(internal.ErrCaptchaInvalid))
	})

	It("should consume the code even on a wrong answer", func() {
		ch, err := svc.Generate(ctx)
		Expect(err).NotTo(HaveOccurred())

		code, err := mr.Get("captcha_codes:" + ch.UUID)
		Expect(err).NotTo(HaveOccurred())

		Expect(svc.Verify(ctx, ch.UUID, "nope")).To(MatchError(internal.ErrCaptchaInvalid))
		Expect(svc.Verify(ctx, ch.UUID, code)).To(MatchError(internal.ErrCaptchaInvalid))
	})

	It("should reject an expired code", func() {
		ch, err := svc.Generate(ctx)
		Expect(err).NotTo(HaveOccurred())

		code, err := mr.Get("captcha_codes:" + ch.UUID)
		Expect(err).NotTo(HaveOccurred())

		mr.FastForward(3 * time.Minute)

		Expect(svc.Verify(ctx, ch.UUID, code)).To(MatchError(internal.ErrCaptchaInvalid))
	})
})
