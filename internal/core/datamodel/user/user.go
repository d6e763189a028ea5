package user

import "time"

// User maps the sys_user table. Status "0" means active, "1" disabled;
// DelFlag "2" marks a soft-deleted row.
type User struct {
	UserID      int64      `gorm:"primaryKey;column:user_id" json:"userId"`
	DeptID      *int64     `gorm:"column:dept_id" json:"deptId"`
	UserName    string     `gorm:"column:user_name;uniqueIndex;not null" json:"userName"`
	NickName    string     `gorm:"column:nick_name;not null" json:"nickName"`
	UserType    string     `gorm:"column:user_type;default:00" json:"userType"`
	Email       string     `gorm:"column:email" json:"email"`
	Phonenumber string     `gorm:"column:phonenumber" json:"phonenumber"`
	Sex         string     `gorm:"column:sex" json:"sex"`
	Avatar      string     `gorm:"column:avatar" json:"avatar"`
	Password    string     `gorm:"column:password" json:"-"`
	Status      string     `gorm:"column:status;default:0" json:"status"`
	DelFlag     string     `gorm:"column:del_flag;default:0" json:"-"`
	LoginIP     string     `gorm:"column:login_ip" json:"loginIp"`
	LoginDate   *time.Time `gorm:"column:login_date" json:"loginDate"`
	CreateBy    string     `gorm:"column:create_by" json:"createBy"`
	CreatedAt   time.Time  `gorm:"column:create_time" json:"createTime"`
	UpdateBy    string     `gorm:"column:update_by" json:"updateBy"`
	UpdatedAt   time.Time  `gorm:"column:update_time" json:"updateTime"`
	Remark      string     `gorm:"column:remark" json:"remark"`
}

func (User) TableName() string {
	return "sys_user"
}

type UserRole struct {
	UserID int64 `gorm:"primaryKey;column:user_id" json:"userId"`
	RoleID int64 `gorm:"primaryKey;column:role_id" json:"roleId"`
}

func (UserRole) TableName() string {
	return "sys_user_role"
}

type UserPost struct {
	UserID int64 `gorm:"primaryKey;column:user_id" json:"userId"`
	PostID int64 `gorm:"primaryKey;column:post_id" json:"postId"`
}

func (UserPost) TableName() string {
	return "sys_user_post"
}
