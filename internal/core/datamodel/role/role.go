package role

import "time"

// DataScope values carried by sys_role.data_scope.
const (
	ScopeAll          = "1"
	ScopeCustom       = "2"
	ScopeDept         = "3"
	ScopeDeptAndChild = "4"
	ScopeSelf         = "5"
)

type Role struct {
	RoleID    int64     `gorm:"primaryKey;column:role_id" json:"roleId"`
	RoleName  string    `gorm:"column:role_name;not null" json:"roleName"`
	RoleKey   string    `gorm:"column:role_key;not null" json:"roleKey"`
	RoleSort  int       `gorm:"column:role_sort" json:"roleSort"`
	DataScope string    `gorm:"column:data_scope;default:1" json:"dataScope"`
	Status    string    `gorm:"column:status;default:0" json:"status"`
	DelFlag   string    `gorm:"column:del_flag;default:0" json:"-"`
	CreateBy  string    `gorm:"column:create_by" json:"createBy"`
	CreatedAt time.Time `gorm:"column:create_time" json:"createTime"`
	UpdateBy  string    `gorm:"column:update_by" json:"updateBy"`
	UpdatedAt time.Time `gorm:"column:update_time" json:"updateTime"`
	Remark    string    `gorm:"column:remark" json:"remark"`
}

func (Role) TableName() string {
	return "sys_role"
}

type RoleMenu struct {
	RoleID int64 `gorm:"primaryKey;column:role_id" json:"roleId"`
	MenuID int64 `gorm:"primaryKey;column:menu_id" json:"menuId"`
}

func (RoleMenu) TableName() string {
	return "sys_role_menu"
}

type RoleDept struct {
	RoleID int64 `gorm:"primaryKey;column:role_id" json:"roleId"`
	DeptID int64 `gorm:"primaryKey;column:dept_id" json:"deptId"`
}

func (RoleDept) TableName() string {
	return "sys_role_dept"
}
