package user

import (
	"context"
	"sync"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/admin-management/internal"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/core/events"
	"github.com/frahmantamala/admin-management/internal/session"
	"github.com/frahmantamala/admin-management/pkg/logger"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockRepository struct {
	users      map[int64]*userModel.User
	deleted    []int64
	passwords  map[int64]string
	statuses   map[int64]string
	roles      map[int64][]int64
	takenNames map[string]bool
	listScope  string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users: map[int64]*userModel.User{
			2: {UserID: 2, UserName: "operator", NickName: "Operator", Status: "0", DelFlag: "0"},
		},
		passwords:  make(map[int64]string),
		statuses:   make(map[int64]string),
		roles:      make(map[int64][]int64),
		takenNames: map[string]bool{"operator": true},
	}
}

func (m *mockRepository) List(ctx context.Context, q QueryDTO, dataScope string) ([]*userModel.User, int64, error) {
	m.listScope = dataScope
	return nil, 0, nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*userModel.User, error) {
	return m.users[id], nil
}

func (m *mockRepository) ExistsUserName(ctx context.Context, name string, exclude int64) (bool, error) {
	return m.takenNames[name], nil
}

func (m *mockRepository) ExistsEmail(ctx context.Context, email string, exclude int64) (bool, error) {
	return false, nil
}

func (m *mockRepository) ExistsPhone(ctx context.Context, phone string, exclude int64) (bool, error) {
	return false, nil
}

func (m *mockRepository) Create(ctx context.Context, u *userModel.User, roleIDs, postIDs []int64) error {
	u.UserID = int64(len(m.users) + 10)
	m.users[u.UserID] = u
	m.roles[u.UserID] = roleIDs
	return nil
}

func (m *mockRepository) Update(ctx context.Context, u *userModel.User, roleIDs, postIDs []int64) error {
	m.users[u.UserID] = u
	m.roles[u.UserID] = roleIDs
	return nil
}

func (m *mockRepository) SoftDelete(ctx context.Context, ids []int64) error {
	m.deleted = append(m.deleted, ids...)
	return nil
}

func (m *mockRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	m.passwords[id] = hash
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	m.statuses[id] = status
	return nil
}

func (m *mockRepository) RoleIDsByUserID(ctx context.Context, id int64) ([]int64, error) {
	return m.roles[id], nil
}

func (m *mockRepository) PostIDsByUserID(ctx context.Context, id int64) ([]int64, error) {
	return nil, nil
}

func (m *mockRepository) ReplaceRoles(ctx context.Context, id int64, roleIDs []int64) error {
	m.roles[id] = roleIDs
	return nil
}

type mockScopes struct {
	scope string
}

func (m *mockScopes) DataScopeFor(ctx context.Context, userID, deptID int64, deptAlias, userAlias string) (string, error) {
	return m.scope, nil
}

// refreshRecorder captures permission-refresh publications.
type refreshRecorder struct {
	mu       sync.Mutex
	payloads []events.PermissionsChangedPayload
}

func (r *refreshRecorder) record(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, event.Payload().(events.PermissionsChangedPayload))
	return nil
}

func (r *refreshRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func (r *refreshRecorder) last() events.PermissionsChangedPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payloads[len(r.payloads)-1]
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service  *Service
		repo     *mockRepository
		scopes   *mockScopes
		recorder *refreshRecorder
		actor    *session.LoginUser
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		scopes = &mockScopes{}
		recorder = &refreshRecorder{}
		bus := events.NewEventBus(logger.L())
		bus.Subscribe(events.EventTypePermissionsChanged, recorder.record)

		service = NewService(repo, scopes, bus, bcrypt.MinCost, logger.L())
		actor = &session.LoginUser{UserID: 2, User: session.UserProfile{UserID: 2, UserName: "operator"}}
		ctx = context.Background()
	})

	ginkgo.Describe("List", func() {
		ginkgo.It("should pass the actor's data scope to the repository", func() {
			scopes.scope = "(d.dept_id = 101)"
			_, err := service.List(ctx, QueryDTO{}, actor)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(repo.listScope).To(gomega.Equal("(d.dept_id = 101)"))
		})
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should reject a taken login name", func() {
			_, err := service.Create(ctx, CreateUserDTO{UserName: "operator", NickName: "Dup", Password: "secret1"})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeUserNameExists))
		})

		ginkgo.It("should store a bcrypt hash, never the plaintext", func() {
			created, err := service.Create(ctx, CreateUserDTO{UserName: "dave", NickName: "Dave", Password: "secret1"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created.Password).NotTo(gomega.Equal("secret1"))
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret1"))).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("should refuse to touch the super administrator", func() {
			err := service.Update(ctx, UpdateUserDTO{UserID: 1, NickName: "Root"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrAdminNotAllowed))
		})

		ginkgo.It("should broadcast a permission refresh when the role set changes", func() {
			repo.roles[2] = []int64{2}

			gomega.Expect(service.Update(ctx, UpdateUserDTO{UserID: 2, NickName: "Operator", RoleIDs: []int64{3}})).To(gomega.Succeed())

			gomega.Eventually(recorder.count).Should(gomega.Equal(1))
			gomega.Expect(recorder.last().UserIDs).To(gomega.ConsistOf(int64(2)))
		})

		ginkgo.It("should not broadcast when the role set is unchanged", func() {
			repo.roles[2] = []int64{2, 3}

			gomega.Expect(service.Update(ctx, UpdateUserDTO{UserID: 2, NickName: "Operator", RoleIDs: []int64{3, 2}})).To(gomega.Succeed())

			gomega.Consistently(recorder.count).Should(gomega.BeZero())
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should refuse to delete the super administrator", func() {
			err := service.Delete(ctx, []int64{1}, actor)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrAdminNotAllowed))
			gomega.Expect(repo.deleted).To(gomega.BeEmpty())
		})

		ginkgo.It("should refuse to delete the current user", func() {
			err := service.Delete(ctx, []int64{2}, actor)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeDeleteSelf))
		})

		ginkgo.It("should soft-delete other users", func() {
			gomega.Expect(service.Delete(ctx, []int64{5, 6}, actor)).To(gomega.Succeed())
			gomega.Expect(repo.deleted).To(gomega.ConsistOf(int64(5), int64(6)))
		})
	})

	ginkgo.Describe("ResetPassword", func() {
		ginkgo.It("should hash the new password", func() {
			gomega.Expect(service.ResetPassword(ctx, ResetPasswordDTO{UserID: 2, Password: "newpass"})).To(gomega.Succeed())
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(repo.passwords[2]), []byte("newpass"))).To(gomega.Succeed())
		})

		ginkgo.It("should guard the super administrator", func() {
			err := service.ResetPassword(ctx, ResetPasswordDTO{UserID: 1, Password: "newpass"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrAdminNotAllowed))
		})
	})

	ginkgo.Describe("ChangeStatus", func() {
		ginkgo.It("should accept only 0 or 1", func() {
			err := service.ChangeStatus(ctx, ChangeStatusDTO{UserID: 2, Status: "9"})
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})

		ginkgo.It("should persist the new status", func() {
			gomega.Expect(service.ChangeStatus(ctx, ChangeStatusDTO{UserID: 2, Status: "1"})).To(gomega.Succeed())
			gomega.Expect(repo.statuses[2]).To(gomega.Equal("1"))
		})
	})

	ginkgo.Describe("AuthRole", func() {
		ginkgo.It("should replace the role assignment", func() {
			gomega.Expect(service.AuthRole(ctx, AuthRoleDTO{UserID: 2, RoleIDs: []int64{3, 4}})).To(gomega.Succeed())
			gomega.Expect(repo.roles[2]).To(gomega.ConsistOf(int64(3), int64(4)))
		})

		ginkgo.It("should broadcast a permission refresh for the user", func() {
			gomega.Expect(service.AuthRole(ctx, AuthRoleDTO{UserID: 2, RoleIDs: []int64{3}})).To(gomega.Succeed())

			gomega.Eventually(recorder.count).Should(gomega.Equal(1))
			gomega.Expect(recorder.last().UserIDs).To(gomega.ConsistOf(int64(2)))
		})
	})
})
