package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the built-in admin account, departments, roles, menus and posts.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			tables := []string{
				"sys_user_post", "sys_user_role", "sys_role_menu", "sys_role_dept",
				"sys_oper_log", "sys_user", "sys_role", "sys_menu", "sys_dept", "sys_post",
			}
			for _, table := range tables {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedDepts(db)
		seedPosts(db)
		seedRoles(db)
		seedMenus(db)
		seedUsers(db, cfg.Security.BCryptCost)
		seedLinks(db)

		fmt.Println("Seeding complete")
	},
}

func rowMissing(db *gorm.DB, query string, args ...interface{}) bool {
	var one int
	return db.Raw(query, args...).Row().Scan(&one) != nil
}

func seedDepts(db *gorm.DB) {
	depts := []struct {
		ID       int64
		ParentID int64
		Anc      string
		Name     string
		Sort     int
	}{
		{100, 0, "0", "Headquarters", 0},
		{101, 100, "0,100", "R&D Department", 1},
		{102, 100, "0,100", "Finance Department", 2},
	}
	for _, d := range depts {
		if !rowMissing(db, "SELECT 1 FROM sys_dept WHERE dept_id = ?", d.ID) {
			continue
		}
		err := db.Exec(
			"INSERT INTO sys_dept (dept_id, parent_id, ancestors, dept_name, order_num, status, del_flag, create_by, create_time, update_time) VALUES (?, ?, ?, ?, ?, '0', '0', 'admin', now(), now())",
			d.ID, d.ParentID, d.Anc, d.Name, d.Sort,
		).Error
		if err != nil {
			log.Fatalf("failed to insert dept %s: %v", d.Name, err)
		}
	}
	fmt.Println("Seeded departments")
}

func seedPosts(db *gorm.DB) {
	posts := []struct {
		ID   int64
		Code string
		Name string
		Sort int
	}{
		{1, "ceo", "Chief Executive", 1},
		{2, "se", "Software Engineer", 2},
	}
	for _, p := range posts {
		if !rowMissing(db, "SELECT 1 FROM sys_post WHERE post_id = ?", p.ID) {
			continue
		}
		err := db.Exec(
			"INSERT INTO sys_post (post_id, post_code, post_name, post_sort, status, create_by, create_time, update_time) VALUES (?, ?, ?, ?, '0', 'admin', now(), now())",
			p.ID, p.Code, p.Name, p.Sort,
		).Error
		if err != nil {
			log.Fatalf("failed to insert post %s: %v", p.Code, err)
		}
	}
	fmt.Println("Seeded posts")
}

func seedRoles(db *gorm.DB) {
	roles := []struct {
		ID    int64
		Name  string
		Key   string
		Sort  int
		Scope string
	}{
		{1, "Administrator", "admin", 1, "1"},
		{2, "Common Role", "common", 2, "2"},
	}
	for _, r := range roles {
		if !rowMissing(db, "SELECT 1 FROM sys_role WHERE role_id = ?", r.ID) {
			continue
		}
		err := db.Exec(
			"INSERT INTO sys_role (role_id, role_name, role_key, role_sort, data_scope, status, del_flag, create_by, create_time, update_time) VALUES (?, ?, ?, ?, ?, '0', '0', 'admin', now(), now())",
			r.ID, r.Name, r.Key, r.Sort, r.Scope,
		).Error
		if err != nil {
			log.Fatalf("failed to insert role %s: %v", r.Key, err)
		}
	}
	fmt.Println("Seeded roles")
}

func seedMenus(db *gorm.DB) {
	menus := []struct {
		ID       int64
		Name     string
		ParentID int64
		Sort     int
		Path     string
		Type     string
		Perms    string
	}{
		{1, "System", 0, 1, "system", "M", ""},
		{2, "Monitor", 0, 2, "monitor", "M", ""},
		{100, "Users", 1, 1, "user", "C", "system:user:list"},
		{101, "Roles", 1, 2, "role", "C", "system:role:list"},
		{102, "Menus", 1, 3, "menu", "C", "system:menu:list"},
		{103, "Departments", 1, 4, "dept", "C", "system:dept:list"},
		{104, "Posts", 1, 5, "post", "C", "system:post:list"},
		{500, "Operation Log", 2, 1, "operlog", "C", "monitor:operlog:list"},
		{1000, "User query", 100, 1, "", "F", "system:user:query"},
		{1001, "User add", 100, 2, "", "F", "system:user:add"},
		{1002, "User edit", 100, 3, "", "F", "system:user:edit"},
		{1003, "User remove", 100, 4, "", "F", "system:user:remove"},
		{1004, "User reset password", 100, 5, "", "F", "system:user:resetPwd"},
		{1010, "Role query", 101, 1, "", "F", "system:role:query"},
		{1011, "Role add", 101, 2, "", "F", "system:role:add"},
		{1012, "Role edit", 101, 3, "", "F", "system:role:edit"},
		{1013, "Role remove", 101, 4, "", "F", "system:role:remove"},
		{1020, "Menu query", 102, 1, "", "F", "system:menu:query"},
		{1021, "Menu add", 102, 2, "", "F", "system:menu:add"},
		{1022, "Menu edit", 102, 3, "", "F", "system:menu:edit"},
		{1023, "Menu remove", 102, 4, "", "F", "system:menu:remove"},
		{1030, "Dept query", 103, 1, "", "F", "system:dept:query"},
		{1031, "Dept add", 103, 2, "", "F", "system:dept:add"},
		{1032, "Dept edit", 103, 3, "", "F", "system:dept:edit"},
		{1033, "Dept remove", 103, 4, "", "F", "system:dept:remove"},
		{1040, "Post query", 104, 1, "", "F", "system:post:query"},
		{1041, "Post add", 104, 2, "", "F", "system:post:add"},
		{1042, "Post edit", 104, 3, "", "F", "system:post:edit"},
		{1043, "Post remove", 104, 4, "", "F", "system:post:remove"},
		{1500, "Operation log remove", 500, 1, "", "F", "monitor:operlog:remove"},
	}
	for _, m := range menus {
		if !rowMissing(db, "SELECT 1 FROM sys_menu WHERE menu_id = ?", m.ID) {
			continue
		}
		err := db.Exec(
			"INSERT INTO sys_menu (menu_id, menu_name, parent_id, order_num, path, menu_type, visible, status, perms, create_by, create_time, update_time) VALUES (?, ?, ?, ?, ?, ?, '0', '0', ?, 'admin', now(), now())",
			m.ID, m.Name, m.ParentID, m.Sort, m.Path, m.Type, m.Perms,
		).Error
		if err != nil {
			log.Fatalf("failed to insert menu %s: %v", m.Name, err)
		}
	}
	fmt.Println("Seeded menus")
}

func seedUsers(db *gorm.DB, bcryptCost int) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	users := []struct {
		ID       int64
		DeptID   int64
		UserName string
		NickName string
		Email    string
	}{
		{1, 100, "admin", "Administrator", "admin@example.com"},
		{2, 101, "operator", "Operator", "operator@example.com"},
	}
	for _, u := range users {
		if !rowMissing(db, "SELECT 1 FROM sys_user WHERE user_id = ?", u.ID) {
			fmt.Printf("user %s already exists; skipping\n", u.UserName)
			continue
		}
		err := db.Exec(
			"INSERT INTO sys_user (user_id, dept_id, user_name, nick_name, email, password, status, del_flag, create_by, create_time, update_time) VALUES (?, ?, ?, ?, ?, ?, '0', '0', 'admin', now(), now())",
			u.ID, u.DeptID, u.UserName, u.NickName, u.Email, string(hash),
		).Error
		if err != nil {
			log.Fatalf("failed to insert user %s: %v", u.UserName, err)
		}
		fmt.Println("Seeded user:", u.UserName)
	}
}

func seedLinks(db *gorm.DB) {
	userRoles := [][2]int64{{1, 1}, {2, 2}}
	for _, ur := range userRoles {
		if !rowMissing(db, "SELECT 1 FROM sys_user_role WHERE user_id = ? AND role_id = ?", ur[0], ur[1]) {
			continue
		}
		if err := db.Exec("INSERT INTO sys_user_role (user_id, role_id) VALUES (?, ?)", ur[0], ur[1]).Error; err != nil {
			log.Fatalf("failed to link user %d to role %d: %v", ur[0], ur[1], err)
		}
	}

	userPosts := [][2]int64{{1, 1}, {2, 2}}
	for _, up := range userPosts {
		if !rowMissing(db, "SELECT 1 FROM sys_user_post WHERE user_id = ? AND post_id = ?", up[0], up[1]) {
			continue
		}
		if err := db.Exec("INSERT INTO sys_user_post (user_id, post_id) VALUES (?, ?)", up[0], up[1]).Error; err != nil {
			log.Fatalf("failed to link user %d to post %d: %v", up[0], up[1], err)
		}
	}

	// The common role can browse users and the operation log but not mutate.
	commonMenus := []int64{1, 2, 100, 500, 1000}
	for _, menuID := range commonMenus {
		if !rowMissing(db, "SELECT 1 FROM sys_role_menu WHERE role_id = 2 AND menu_id = ?", menuID) {
			continue
		}
		if err := db.Exec("INSERT INTO sys_role_menu (role_id, menu_id) VALUES (2, ?)", menuID).Error; err != nil {
			log.Fatalf("failed to link role 2 to menu %d: %v", menuID, err)
		}
	}

	// The common role's custom data scope covers the R&D department.
	if rowMissing(db, "SELECT 1 FROM sys_role_dept WHERE role_id = 2 AND dept_id = 101") {
		if err := db.Exec("INSERT INTO sys_role_dept (role_id, dept_id) VALUES (2, 101)").Error; err != nil {
			log.Fatalf("failed to link role 2 to dept 101: %v", err)
		}
	}

	fmt.Println("Seeded role, post and menu assignments")
}
