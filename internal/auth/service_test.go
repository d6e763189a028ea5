package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/admin-management/internal"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/permission"
	"github.com/frahmantamala/admin-management/internal/session"
	"github.com/frahmantamala/admin-management/pkg/logger"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockUserRepository struct {
	users       map[string]*userModel.User
	loginStamps map[int64]string
	returnError error
}

func newMockUserRepository() *mockUserRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	deptID := int64(101)

	return &mockUserRepository{
		users: map[string]*userModel.User{
			"admin": {
				UserID: 1, UserName: "admin", NickName: "Administrator",
				Password: string(hash), Status: "0", DelFlag: "0", DeptID: &deptID,
			},
			"disabled": {
				UserID: 3, UserName: "disabled", Password: string(hash),
				Status: "1", DelFlag: "0",
			},
			"deleted": {
				UserID: 4, UserName: "deleted", Password: string(hash),
				Status: "0", DelFlag: "2",
			},
			"operator": {
				UserID: 2, UserName: "operator", Password: string(hash),
				Status: "0", DelFlag: "0", DeptID: &deptID,
			},
		},
		loginStamps: make(map[int64]string),
	}
}

func (m *mockUserRepository) FindByUserName(ctx context.Context, name string) (*userModel.User, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.users[name], nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*userModel.User, error) {
	for _, u := range m.users {
		if u.UserID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateLoginInfo(ctx context.Context, id int64, ip string, at time.Time) error {
	m.loginStamps[id] = ip
	return nil
}

type mockResolver struct {
	perms map[int64][]string
	err   error
}

func (m *mockResolver) ResolveByUserID(ctx context.Context, userID int64) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if permission.IsAdminUser(userID) {
		return []string{permission.AllPermission}, nil
	}
	return m.perms[userID], nil
}

func (m *mockResolver) RoleKeysByUserID(ctx context.Context, userID int64) ([]string, []int64, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	if permission.IsAdminUser(userID) {
		return []string{permission.AdminRoleKey}, []int64{permission.AdminRoleID}, nil
	}
	return []string{"common"}, []int64{2}, nil
}

// memoryStore is an in-process stand-in for the Redis store.
type memoryStore struct {
	mu      sync.Mutex
	records map[string]*session.LoginUser
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*session.LoginUser)}
}

func (m *memoryStore) Put(ctx context.Context, user *session.LoginUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Touch(time.Now(), 30*time.Minute)
	clone := *user
	m.records[user.Token] = &clone
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (*session.LoginUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.records[id]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, nil
}

func (m *memoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *memoryStore) Scan(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		repo     *mockUserRepository
		store    *memoryStore
		tokens   *JWTTokenService
		resolver *mockResolver
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		repo = newMockUserRepository()
		store = newMemoryStore()
		resolver = &mockResolver{perms: map[int64][]string{2: {"system:role:list"}}}
		tokens, err = NewJWTTokenService("0123456789abcdef0123456789abcdef", 7*24*time.Hour)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		service = NewService(repo, resolver, store, tokens, nil, 7*24*time.Hour, bcrypt.MinCost, logger.L())
		ctx = context.Background()
	})

	ginkgo.Describe("Login", func() {
		ginkgo.Context("with valid credentials", func() {
			ginkgo.It("should return a bearer token and the public profile", func() {
				result, err := service.Login(ctx, LoginDTO{UserName: "admin", Password: "admin123"}, "10.0.0.1", "Chrome on Linux")

				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(result.Token).NotTo(gomega.BeEmpty())
				gomega.Expect(result.TokenType).To(gomega.Equal("Bearer"))
				gomega.Expect(result.ExpiresIn).To(gomega.Equal(int64(7 * 24 * 3600)))
				gomega.Expect(result.User.UserName).To(gomega.Equal("admin"))
			})

			ginkgo.It("should write a session record holding the permission set", func() {
				result, err := service.Login(ctx, LoginDTO{UserName: "admin", Password: "admin123"}, "10.0.0.1", "")
				gomega.Expect(err).NotTo(gomega.HaveOccurred())

				sessionID, err := tokens.Validate(result.Token)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())

				rec, err := store.Get(ctx, sessionID)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(rec).NotTo(gomega.BeNil())
				gomega.Expect(rec.Permissions).To(gomega.ConsistOf(permission.AllPermission))
				gomega.Expect(rec.UserID).To(gomega.Equal(int64(1)))
			})

			ginkgo.It("should stamp the login info best effort", func() {
				_, err := service.Login(ctx, LoginDTO{UserName: "operator", Password: "admin123"}, "10.1.2.3", "")
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(repo.loginStamps[2]).To(gomega.Equal("10.1.2.3"))
			})
		})

		ginkgo.Context("with bad credentials", func() {
			ginkgo.It("should fail with the generic credential error on wrong password", func() {
				_, err := service.Login(ctx, LoginDTO{UserName: "admin", Password: "admin124"}, "", "")
				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			})

			ginkgo.It("should fail identically for an unknown account", func() {
				_, err := service.Login(ctx, LoginDTO{UserName: "nobody", Password: "admin123"}, "", "")
				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			})

			ginkgo.It("should reject a disabled account", func() {
				_, err := service.Login(ctx, LoginDTO{UserName: "disabled", Password: "admin123"}, "", "")
				gomega.Expect(err).To(gomega.MatchError(internal.ErrUserDisabled))
			})

			ginkgo.It("should reject a soft-deleted account", func() {
				_, err := service.Login(ctx, LoginDTO{UserName: "deleted", Password: "admin123"}, "", "")
				gomega.Expect(err).To(gomega.MatchError(internal.ErrUserDeleted))
			})

			ginkgo.It("should require username and password", func() {
				_, err := service.Login(ctx, LoginDTO{}, "", "")
				gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
			})
		})
	})

	ginkgo.Describe("GetInfo", func() {
		ginkgo.It("should answer from the session record without touching the resolver", func() {
			loginUser := &session.LoginUser{
				User:        session.UserProfile{UserID: 2, UserName: "operator"},
				RoleKeys:    []string{"common"},
				Permissions: []string{"system:role:list"},
			}

			resolver.err = errors.New("resolver must not be called")
			info := service.GetInfo(loginUser)
			gomega.Expect(info.Roles).To(gomega.ConsistOf("common"))
			gomega.Expect(info.Permissions).To(gomega.ConsistOf("system:role:list"))
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should delete the session and be idempotent", func() {
			result, err := service.Login(ctx, LoginDTO{UserName: "admin", Password: "admin123"}, "", "")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			sessionID, err := tokens.Validate(result.Token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(service.Logout(ctx, sessionID)).To(gomega.Succeed())
			gomega.Expect(service.Logout(ctx, sessionID)).To(gomega.Succeed())

			rec, err := store.Get(ctx, sessionID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(rec).To(gomega.BeNil())
		})
	})
})

var _ = ginkgo.Describe("JWTTokenService", func() {
	var tokens *JWTTokenService

	ginkgo.BeforeEach(func() {
		var err error
		tokens, err = NewJWTTokenService("0123456789abcdef0123456789abcdef", time.Hour)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.It("should refuse to construct without a secret", func() {
		_, err := NewJWTTokenService("", time.Hour)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("should round-trip the session id", func() {
		token, err := tokens.Mint("deadbeef")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		sessionID, err := tokens.Validate(token)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(sessionID).To(gomega.Equal("deadbeef"))
	})

	ginkgo.It("should reject a tampered signature segment", func() {
		token, err := tokens.Mint("deadbeef")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		parts := strings.Split(token, ".")
		gomega.Expect(parts).To(gomega.HaveLen(3))

		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		_, err = tokens.Validate(tampered)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrBadSignature))
	})

	ginkgo.It("should reject an expired token", func() {
		short, err := NewJWTTokenService("0123456789abcdef0123456789abcdef", -time.Minute)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		token, err := short.Mint("deadbeef")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = tokens.Validate(token)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
	})

	ginkgo.It("should reject garbage as malformed", func() {
		_, err := tokens.Validate("not-a-token")
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})

	ginkgo.It("should reject a payload without a session id", func() {
		empty, err := tokens.Mint("")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		_, err = tokens.Validate(empty)
		gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
	})
})
