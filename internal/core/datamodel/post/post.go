package post

import "time"

type Post struct {
	PostID    int64     `gorm:"primaryKey;column:post_id" json:"postId"`
	PostCode  string    `gorm:"column:post_code;not null" json:"postCode"`
	PostName  string    `gorm:"column:post_name;not null" json:"postName"`
	PostSort  int       `gorm:"column:post_sort" json:"postSort"`
	Status    string    `gorm:"column:status;default:0" json:"status"`
	CreateBy  string    `gorm:"column:create_by" json:"createBy"`
	CreatedAt time.Time `gorm:"column:create_time" json:"createTime"`
	UpdateBy  string    `gorm:"column:update_by" json:"updateBy"`
	UpdatedAt time.Time `gorm:"column:update_time" json:"updateTime"`
	Remark    string    `gorm:"column:remark" json:"remark"`
}

func (Post) TableName() string {
	return "sys_post"
}
