package menu

import (
	"context"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/admin-management/internal"
	menuModel "github.com/frahmantamala/admin-management/internal/core/datamodel/menu"
	"github.com/frahmantamala/admin-management/pkg/logger"
)

func TestMenu(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Menu Module Suite")
}

type mockRepository struct {
	menus    map[int64]*menuModel.Menu
	roleRefs map[int64]int64
	deleted  []int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		menus: map[int64]*menuModel.Menu{
			1: {MenuID: 1, MenuName: "System", ParentID: 0, OrderNum: 1, MenuType: menuModel.TypeDirectory},
			2: {MenuID: 2, MenuName: "Users", ParentID: 1, OrderNum: 2, MenuType: menuModel.TypePage, Perms: "system:user:list"},
			3: {MenuID: 3, MenuName: "Roles", ParentID: 1, OrderNum: 1, MenuType: menuModel.TypePage, Perms: "system:role:list"},
			4: {MenuID: 4, MenuName: "Monitor", ParentID: 0, OrderNum: 2, MenuType: menuModel.TypeDirectory},
		},
		roleRefs: map[int64]int64{3: 2},
	}
}

func (m *mockRepository) List(ctx context.Context, q QueryDTO) ([]*menuModel.Menu, error) {
	out := make([]*menuModel.Menu, 0, len(m.menus))
	for _, row := range m.menus {
		out = append(out, row)
	}
	return out, nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*menuModel.Menu, error) {
	return m.menus[id], nil
}

func (m *mockRepository) Create(ctx context.Context, row *menuModel.Menu) error {
	row.MenuID = int64(len(m.menus) + 10)
	m.menus[row.MenuID] = row
	return nil
}

func (m *mockRepository) Update(ctx context.Context, row *menuModel.Menu) error {
	m.menus[row.MenuID] = row
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	delete(m.menus, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	for _, row := range m.menus {
		if row.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) CountRoleRefs(ctx context.Context, id int64) (int64, error) {
	return m.roleRefs[id], nil
}

var _ = ginkgo.Describe("MenuService", func() {
	var (
		service *Service
		repo    *mockRepository
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		service = NewService(repo, logger.L())
		ctx = context.Background()
	})

	ginkgo.Describe("Tree", func() {
		ginkgo.It("should nest children under parents ordered by order_num", func() {
			tree, err := service.Tree(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tree).To(gomega.HaveLen(2))

			gomega.Expect(tree[0].MenuName).To(gomega.Equal("System"))
			gomega.Expect(tree[1].MenuName).To(gomega.Equal("Monitor"))

			children := tree[0].Children
			gomega.Expect(children).To(gomega.HaveLen(2))
			gomega.Expect(children[0].MenuName).To(gomega.Equal("Roles"))
			gomega.Expect(children[1].MenuName).To(gomega.Equal("Users"))
		})
	})

	ginkgo.Describe("Create", func() {
		ginkgo.It("should reject an unknown menu type", func() {
			_, err := service.Create(ctx, CreateMenuDTO{MenuName: "X", MenuType: "Z"})
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})

		ginkgo.It("should create a button menu carrying a permission string", func() {
			created, err := service.Create(ctx, CreateMenuDTO{
				MenuName: "User export", ParentID: 2,
				MenuType: menuModel.TypeButton, Perms: "system:user:export",
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(created.Perms).To(gomega.Equal("system:user:export"))
		})
	})

	ginkgo.Describe("Update", func() {
		ginkgo.It("should refuse a menu parenting itself", func() {
			err := service.Update(ctx, UpdateMenuDTO{MenuID: 2, ParentID: 2, MenuName: "Users", MenuType: menuModel.TypePage})
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should block deleting a menu with children", func() {
			err := service.Delete(ctx, 1)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeMenuHasChildren))
		})

		ginkgo.It("should block deleting a menu granted to a role", func() {
			err := service.Delete(ctx, 3)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeMenuAssigned))
		})

		ginkgo.It("should delete an unreferenced leaf", func() {
			gomega.Expect(service.Delete(ctx, 4)).To(gomega.Succeed())
			gomega.Expect(repo.deleted).To(gomega.ConsistOf(int64(4)))
		})

		ginkgo.It("should 404 for a missing menu", func() {
			err := service.Delete(ctx, 99)

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeMenuNotFound))
		})
	})
})
