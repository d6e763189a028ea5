package menu

import "time"

// MenuType values: "M" directory, "C" page, "F" button/action.
const (
	TypeDirectory = "M"
	TypePage      = "C"
	TypeButton    = "F"
)

// Menu maps sys_menu. Perms holds zero or more comma-separated permission
// strings such as "system:user:list".
type Menu struct {
	MenuID    int64     `gorm:"primaryKey;column:menu_id" json:"menuId"`
	MenuName  string    `gorm:"column:menu_name;not null" json:"menuName"`
	ParentID  int64     `gorm:"column:parent_id;default:0" json:"parentId"`
	OrderNum  int       `gorm:"column:order_num" json:"orderNum"`
	Path      string    `gorm:"column:path" json:"path"`
	Component string    `gorm:"column:component" json:"component"`
	MenuType  string    `gorm:"column:menu_type" json:"menuType"`
	Visible   string    `gorm:"column:visible;default:0" json:"visible"`
	Status    string    `gorm:"column:status;default:0" json:"status"`
	Perms     string    `gorm:"column:perms" json:"perms"`
	Icon      string    `gorm:"column:icon" json:"icon"`
	CreateBy  string    `gorm:"column:create_by" json:"createBy"`
	CreatedAt time.Time `gorm:"column:create_time" json:"createTime"`
	UpdateBy  string    `gorm:"column:update_by" json:"updateBy"`
	UpdatedAt time.Time `gorm:"column:update_time" json:"updateTime"`
	Remark    string    `gorm:"column:remark" json:"remark"`
}

func (Menu) TableName() string {
	return "sys_menu"
}
