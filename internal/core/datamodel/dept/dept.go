package dept

import "time"

// Dept maps sys_dept. Ancestors is a materialized path of parent ids,
// e.g. "0,100,101" for a third-level department.
type Dept struct {
	DeptID    int64     `gorm:"primaryKey;column:dept_id" json:"deptId"`
	ParentID  int64     `gorm:"column:parent_id;default:0" json:"parentId"`
	Ancestors string    `gorm:"column:ancestors" json:"ancestors"`
	DeptName  string    `gorm:"column:dept_name" json:"deptName"`
	OrderNum  int       `gorm:"column:order_num" json:"orderNum"`
	Leader    string    `gorm:"column:leader" json:"leader"`
	Phone     string    `gorm:"column:phone" json:"phone"`
	Email     string    `gorm:"column:email" json:"email"`
	Status    string    `gorm:"column:status;default:0" json:"status"`
	DelFlag   string    `gorm:"column:del_flag;default:0" json:"-"`
	CreateBy  string    `gorm:"column:create_by" json:"createBy"`
	CreatedAt time.Time `gorm:"column:create_time" json:"createTime"`
	UpdateBy  string    `gorm:"column:update_by" json:"updateBy"`
	UpdatedAt time.Time `gorm:"column:update_time" json:"updateTime"`
}

func (Dept) TableName() string {
	return "sys_dept"
}
