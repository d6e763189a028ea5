package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	roleModel "github.com/frahmantamala/admin-management/internal/core/datamodel/role"
)

func TestPermission(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Permission Suite")
}

type mockRepository struct {
	menuPerms map[int64][]string
	roles     map[int64][]roleModel.Role
	roleUsers map[int64][]int64
	err       error
}

func (m *mockRepository) MenuPermsByUserID(ctx context.Context, userID int64) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.menuPerms[userID], nil
}

func (m *mockRepository) RolesByUserID(ctx context.Context, userID int64) ([]roleModel.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roles[userID], nil
}

func (m *mockRepository) UserIDsByRoleID(ctx context.Context, roleID int64) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roleUsers[roleID], nil
}

var _ = ginkgo.Describe("Checker", func() {
	ginkgo.Describe("HasAnyPermission", func() {
		ginkgo.It("should match on any required permission", func() {
			perms := []string{"system:role:list", "system:user:list"}
			gomega.Expect(HasAnyPermission(perms, "system:user:list", "system:user:edit")).To(gomega.BeTrue())
		})

		ginkgo.It("should deny when no required permission is held", func() {
			perms := []string{"system:role:list"}
			gomega.Expect(HasAnyPermission(perms, "system:role:edit")).To(gomega.BeFalse())
		})

		ginkgo.It("should always allow the wildcard sentinel", func() {
			gomega.Expect(HasAnyPermission([]string{AllPermission}, "system:role:edit")).To(gomega.BeTrue())
		})

		ginkgo.It("should allow when nothing is required", func() {
			gomega.Expect(HasAnyPermission(nil)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("HasAnyRole", func() {
		ginkgo.It("should match on any required role key", func() {
			gomega.Expect(HasAnyRole([]string{"common"}, "common", "operator")).To(gomega.BeTrue())
		})

		ginkgo.It("should always allow the admin role key", func() {
			gomega.Expect(HasAnyRole([]string{AdminRoleKey}, "operator")).To(gomega.BeTrue())
		})

		ginkgo.It("should deny a non-matching role set", func() {
			gomega.Expect(HasAnyRole([]string{"common"}, "operator")).To(gomega.BeFalse())
		})
	})
})

var _ = ginkgo.Describe("Resolver", func() {
	var (
		repo     *mockRepository
		resolver *Resolver
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = &mockRepository{
			menuPerms: map[int64][]string{
				2: {"system:user:list,system:user:query", " system:user:list ", "system:role:list"},
			},
			roles: map[int64][]roleModel.Role{
				2: {
					{RoleID: 2, RoleKey: "common"},
					{RoleID: 3, RoleKey: "operator,auditor"},
				},
			},
			roleUsers: map[int64][]int64{2: {2, 5}},
		}
		resolver = NewResolver(repo)
		ctx = context.Background()
	})

	ginkgo.It("should return the wildcard sentinel for the super administrator", func() {
		perms, err := resolver.ResolveByUserID(ctx, AdminUserID)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(perms).To(gomega.Equal([]string{AllPermission}))
	})

	ginkgo.It("should not consult the repository for the super administrator", func() {
		repo.err = errors.New("db down")
		perms, err := resolver.ResolveByUserID(ctx, AdminUserID)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(perms).To(gomega.Equal([]string{AllPermission}))
	})

	ginkgo.It("should split comma-delimited perms and deduplicate", func() {
		perms, err := resolver.ResolveByUserID(ctx, 2)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(perms).To(gomega.ConsistOf(
			"system:user:list", "system:user:query", "system:role:list"))
	})

	ginkgo.It("should return empty for a user with no menu perms", func() {
		perms, err := resolver.ResolveByUserID(ctx, 99)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(perms).To(gomega.BeEmpty())
	})

	ginkgo.It("should split role keys and collect role ids", func() {
		keys, ids, err := resolver.RoleKeysByUserID(ctx, 2)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(keys).To(gomega.ConsistOf("common", "operator", "auditor"))
		gomega.Expect(ids).To(gomega.ConsistOf(int64(2), int64(3)))
	})

	ginkgo.It("should propagate repository errors", func() {
		repo.err = errors.New("db down")
		_, err := resolver.ResolveByUserID(ctx, 2)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("BuildDataScope", func() {
	ginkgo.It("should return an empty predicate when a role carries the all-data policy", func() {
		in := ScopeInput{
			UserID: 2,
			DeptID: 101,
			Roles: []roleModel.Role{
				{RoleID: 2, DataScope: roleModel.ScopeDept},
				{RoleID: 3, DataScope: roleModel.ScopeAll},
			},
		}
		gomega.Expect(BuildDataScope(in, "d", "u")).To(gomega.BeEmpty())
	})

	ginkgo.It("should restrict to the custom department list", func() {
		in := ScopeInput{
			UserID: 2,
			Roles:  []roleModel.Role{{RoleID: 5, DataScope: roleModel.ScopeCustom}},
		}
		gomega.Expect(BuildDataScope(in, "d", "u")).To(gomega.Equal(
			"(d.dept_id IN (SELECT dept_id FROM sys_role_dept WHERE role_id = 5))"))
	})

	ginkgo.It("should restrict to the user's own department", func() {
		in := ScopeInput{
			UserID: 2,
			DeptID: 101,
			Roles:  []roleModel.Role{{RoleID: 5, DataScope: roleModel.ScopeDept}},
		}
		gomega.Expect(BuildDataScope(in, "d", "u")).To(gomega.Equal("(d.dept_id = 101)"))
	})

	ginkgo.It("should include descendants via the ancestors path", func() {
		in := ScopeInput{
			UserID: 2,
			DeptID: 101,
			Roles:  []roleModel.Role{{RoleID: 5, DataScope: roleModel.ScopeDeptAndChild}},
		}
		pred := BuildDataScope(in, "d", "u")
		gomega.Expect(pred).To(gomega.ContainSubstring("dept_id = 101"))
		gomega.Expect(pred).To(gomega.ContainSubstring("LIKE '%,101,%'"))
	})

	ginkgo.It("should restrict to rows owned by the user for self-only", func() {
		in := ScopeInput{
			UserID: 2,
			Roles:  []roleModel.Role{{RoleID: 5, DataScope: roleModel.ScopeSelf}},
		}
		gomega.Expect(BuildDataScope(in, "d", "u")).To(gomega.Equal("(u.user_id = 2)"))
	})

	ginkgo.It("should OR-join distinct policies and deduplicate repeats", func() {
		in := ScopeInput{
			UserID: 2,
			DeptID: 101,
			Roles: []roleModel.Role{
				{RoleID: 5, DataScope: roleModel.ScopeDept},
				{RoleID: 6, DataScope: roleModel.ScopeDept},
				{RoleID: 7, DataScope: roleModel.ScopeSelf},
			},
		}
		gomega.Expect(BuildDataScope(in, "d", "u")).To(gomega.Equal(
			"(d.dept_id = 101 OR u.user_id = 2)"))
	})

	ginkgo.It("should return an empty predicate when no role yields a restriction", func() {
		in := ScopeInput{UserID: 2}
		gomega.Expect(BuildDataScope(in, "d", "u")).To(gomega.BeEmpty())
	})

	ginkgo.It("should default the table aliases", func() {
		in := ScopeInput{
			UserID: 2,
			DeptID: 101,
			Roles:  []roleModel.Role{{RoleID: 5, DataScope: roleModel.ScopeDept}},
		}
		gomega.Expect(BuildDataScope(in, "", "")).To(gomega.Equal("(d.dept_id = 101)"))
	})
})
