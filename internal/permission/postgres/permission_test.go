package postgres_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	deptModel "github.com/frahmantamala/admin-management/internal/core/datamodel/dept"
	menuModel "github.com/frahmantamala/admin-management/internal/core/datamodel/menu"
	roleModel "github.com/frahmantamala/admin-management/internal/core/datamodel/role"
	userModel "github.com/frahmantamala/admin-management/internal/core/datamodel/user"
	"github.com/frahmantamala/admin-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/admin-management/internal/permission/postgres"
)

func TestPermissionPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Permission Postgres Suite")
}

var _ = Describe("Permission Repository", func() {
	var (
		db   *gorm.DB
		repo *permissionPostgres.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&userModel.User{}, &userModel.UserRole{},
			&roleModel.Role{}, &roleModel.RoleMenu{}, &roleModel.RoleDept{},
			&menuModel.Menu{}, &deptModel.Dept{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = permissionPostgres.NewRepository(db)
		ctx = context.Background()
	})

	seedUserWithRole := func(userID, roleID int64, dataScope string) {
		Expect(db.Create(&roleModel.Role{
			RoleID: roleID, RoleName: "r", RoleKey: "common",
			DataScope: dataScope, Status: "0", DelFlag: "0",
		}).Error).To(Succeed())
		Expect(db.Create(&userModel.UserRole{UserID: userID, RoleID: roleID}).Error).To(Succeed())
	}

	Describe("MenuPermsByUserID", func() {
		It("should join user, role, and menu tables", func() {
			seedUserWithRole(2, 10, roleModel.ScopeAll)
			Expect(db.Create(&menuModel.Menu{
				MenuID: 100, MenuName: "users", MenuType: menuModel.TypePage,
				Status: "0", Perms: "system:user:list,system:user:query",
			}).Error).To(Succeed())
			Expect(db.Create(&roleModel.RoleMenu{RoleID: 10, MenuID: 100}).Error).To(Succeed())

			perms, err := repo.MenuPermsByUserID(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(ConsistOf("system:user:list,system:user:query"))
		})

		It("should skip disabled menus and empty perms", func() {
			seedUserWithRole(2, 10, roleModel.ScopeAll)
			Expect(db.Create(&menuModel.Menu{
				MenuID: 100, MenuName: "hidden", MenuType: menuModel.TypePage,
				Status: "1", Perms: "system:user:list",
			}).Error).To(Succeed())
			Expect(db.Create(&menuModel.Menu{
				MenuID: 101, MenuName: "dir", MenuType: menuModel.TypeDirectory,
				Status: "0", Perms: "",
			}).Error).To(Succeed())
			Expect(db.Create(&roleModel.RoleMenu{RoleID: 10, MenuID: 100}).Error).To(Succeed())
			Expect(db.Create(&roleModel.RoleMenu{RoleID: 10, MenuID: 101}).Error).To(Succeed())

			perms, err := repo.MenuPermsByUserID(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(BeEmpty())
		})
	})

	Describe("RolesByUserID", func() {
		It("should return only live, enabled roles", func() {
			seedUserWithRole(2, 10, roleModel.ScopeDept)
			Expect(db.Create(&roleModel.Role{
				RoleID: 11, RoleName: "gone", RoleKey: "gone",
				DataScope: roleModel.ScopeAll, Status: "0", DelFlag: "2",
			}).Error).To(Succeed())
			Expect(db.Create(&userModel.UserRole{UserID: 2, RoleID: 11}).Error).To(Succeed())

			roles, err := repo.RolesByUserID(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(1))
			Expect(roles[0].RoleID).To(Equal(int64(10)))
			Expect(roles[0].DataScope).To(Equal(roleModel.ScopeDept))
		})
	})

	Describe("UserIDsByRoleID", func() {
		It("should list the role membership", func() {
			seedUserWithRole(2, 10, roleModel.ScopeAll)
			Expect(db.Create(&userModel.UserRole{UserID: 5, RoleID: 10}).Error).To(Succeed())

			ids, err := repo.UserIDsByRoleID(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(2), int64(5)))
		})
	})

	Describe("data-scope predicate against a department tree", func() {
		// root(100) -> D(101) -> child(102), with sibling(103) outside the path
		BeforeEach(func() {
			Expect(db.Create(&deptModel.Dept{DeptID: 100, ParentID: 0, Ancestors: "0", DeptName: "root", Status: "0", DelFlag: "0"}).Error).To(Succeed())
			Expect(db.Create(&deptModel.Dept{DeptID: 101, ParentID: 100, Ancestors: "0,100", DeptName: "d", Status: "0", DelFlag: "0"}).Error).To(Succeed())
			Expect(db.Create(&deptModel.Dept{DeptID: 102, ParentID: 101, Ancestors: "0,100,101", DeptName: "d-child", Status: "0", DelFlag: "0"}).Error).To(Succeed())
			Expect(db.Create(&deptModel.Dept{DeptID: 103, ParentID: 100, Ancestors: "0,100", DeptName: "sibling", Status: "0", DelFlag: "0"}).Error).To(Succeed())
		})

		It("should match the department and its descendants only", func() {
			in := permission.ScopeInput{
				UserID: 2,
				DeptID: 101,
				Roles:  []roleModel.Role{{RoleID: 5, DataScope: roleModel.ScopeDeptAndChild}},
			}
			pred := permission.BuildDataScope(in, "d", "u")

			var ids []int64
			err := db.Table("sys_dept d").Where(pred).Pluck("d.dept_id", &ids).Error
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(101), int64(102)))
		})
	})
})
