package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	goredis "github.com/redis/go-redis/v9"

	"github.com/frahmantamala/admin-management/internal/session"
	sessionRedis "github.com/frahmantamala/admin-management/internal/session/redis"
	"github.com/frahmantamala/admin-management/pkg/logger"
)

func TestSessionRedis(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Redis Suite")
}

var _ = Describe("Session Store", func() {
	var (
		mr     *miniredis.Miniredis
		client *goredis.Client
		store  *sessionRedis.Store
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		client = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		store = sessionRedis.NewStore(client, 30*time.Minute, 2*time.Second, logger.L())
		ctx = context.Background()
	})

	AfterEach(func() {
		client.Close()
		mr.Close()
	})

	newLoginUser := func(token string, userID int64, perms ...string) *session.LoginUser {
		return &session.LoginUser{
			Token:       token,
			UserID:      userID,
			User:        session.UserProfile{UserID: userID, UserName: "tester"},
			Permissions: perms,
		}
	}

	Describe("Put and Get", func() {
		It("should return the record that was written", func() {
			user := newLoginUser("abc123", 7, "system:user:list")

			Expect(store.Put(ctx, user)).To(Succeed())

			got, err := store.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.UserID).To(Equal(int64(7)))
			Expect(got.Permissions).To(ConsistOf("system:user:list"))
			Expect(got.User.UserName).To(Equal("tester"))
		})

		It("should stamp login and expire times on write", func() {
			user := newLoginUser("abc123", 7)

			Expect(store.Put(ctx, user)).To(Succeed())

			Expect(user.LoginTime).NotTo(BeZero())
			Expect(user.ExpireTime - user.LoginTime).To(Equal((30 * time.Minute).Milliseconds()))
		})

		It("should set a store-level TTL atomically with the value", func() {
			Expect(store.Put(ctx, newLoginUser("abc123", 7))).To(Succeed())

			ttl := mr.TTL(session.KeyPrefix + "abc123")
			Expect(ttl).To(Equal(30 * time.Minute))
		})

		It("should return nil for an unknown session id", func() {
			got, err := store.Get(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should return nil after the TTL elapses", func() {
			Expect(store.Put(ctx, newLoginUser("abc123", 7))).To(Succeed())

			mr.FastForward(31 * time.Minute)

			got, err := store.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should treat a corrupt record as a miss", func() {
			mr.Set(session.KeyPrefix+"bad", "{not json")

			got, err := store.Get(ctx, "bad")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should use last-writer-wins for the same id", func() {
			Expect(store.Put(ctx, newLoginUser("abc123", 7, "a:b:c"))).To(Succeed())
			Expect(store.Put(ctx, newLoginUser("abc123", 7, "x:y:z"))).To(Succeed())

			got, err := store.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Permissions).To(ConsistOf("x:y:z"))
		})
	})

	Describe("Delete", func() {
		It("should remove the record", func() {
			Expect(store.Put(ctx, newLoginUser("abc123", 7))).To(Succeed())
			Expect(store.Delete(ctx, "abc123")).To(Succeed())

			got, err := store.Get(ctx, "abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should be idempotent for an absent key", func() {
			Expect(store.Delete(ctx, "abc123")).To(Succeed())
			Expect(store.Delete(ctx, "abc123")).To(Succeed())
		})
	})

	Describe("Scan", func() {
		It("should list all live session ids", func() {
			Expect(store.Put(ctx, newLoginUser("s1", 1))).To(Succeed())
			Expect(store.Put(ctx, newLoginUser("s2", 2))).To(Succeed())
			mr.Set("other:key", "x")

			ids, err := store.Scan(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf("s1", "s2"))
		})
	})

	Describe("RefreshPermissions", func() {
		It("should rewrite permission sets of affected users only", func() {
			Expect(store.Put(ctx, newLoginUser("s1", 1, "old:perm"))).To(Succeed())
			Expect(store.Put(ctx, newLoginUser("s2", 2, "keep:perm"))).To(Succeed())

			store.RefreshPermissions(ctx, []int64{1}, func(ctx context.Context, userID int64) ([]string, error) {
				return []string{"new:perm"}, nil
			})

			got1, _ := store.Get(ctx, "s1")
			Expect(got1.Permissions).To(ConsistOf("new:perm"))

			got2, _ := store.Get(ctx, "s2")
			Expect(got2.Permissions).To(ConsistOf("keep:perm"))
		})
	})
})
