package operlog

import "time"

// Business types recorded with each operation log entry.
const (
	BusinessOther  = 0
	BusinessInsert = 1
	BusinessUpdate = 2
	BusinessDelete = 3
	BusinessGrant  = 4
	BusinessExport = 5
)

const (
	StatusSuccess = 0
	StatusFailure = 1
)

type OperLog struct {
	OperID        int64     `gorm:"primaryKey;column:oper_id" json:"operId"`
	Title         string    `gorm:"column:title" json:"title"`
	BusinessType  int       `gorm:"column:business_type" json:"businessType"`
	Method        string    `gorm:"column:method" json:"method"`
	RequestMethod string    `gorm:"column:request_method" json:"requestMethod"`
	OperName      string    `gorm:"column:oper_name" json:"operName"`
	DeptName      string    `gorm:"column:dept_name" json:"deptName"`
	OperURL       string    `gorm:"column:oper_url" json:"operUrl"`
	OperIP        string    `gorm:"column:oper_ip" json:"operIp"`
	OperParam     string    `gorm:"column:oper_param" json:"operParam"`
	JSONResult    string    `gorm:"column:json_result" json:"jsonResult"`
	Status        int       `gorm:"column:status" json:"status"`
	ErrorMsg      string    `gorm:"column:error_msg" json:"errorMsg"`
	OperTime      time.Time `gorm:"column:oper_time" json:"operTime"`
	CostTime      int64     `gorm:"column:cost_time" json:"costTime"`
}

func (OperLog) TableName() string {
	return "sys_oper_log"
}
