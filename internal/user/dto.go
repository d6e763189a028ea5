package user

// QueryDTO filters the paged user list.
type QueryDTO struct {
	UserName    string `json:"userName"`
	Phonenumber string `json:"phonenumber"`
	Status      string `json:"status"`
	DeptID      int64  `json:"deptId"`
	PageNum     int    `json:"pageNum"`
	PageSize    int    `json:"pageSize"`
}

// Normalize clamps paging to sane bounds.
func (q *QueryDTO) Normalize() {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}
}

type CreateUserDTO struct {
	DeptID      *int64  `json:"deptId"`
	UserName    string  `json:"userName"`
	NickName    string  `json:"nickName"`
	Password    string  `json:"password"`
	Email       string  `json:"email"`
	Phonenumber string  `json:"phonenumber"`
	Sex         string  `json:"sex"`
	Status      string  `json:"status"`
	RoleIDs     []int64 `json:"roleIds"`
	PostIDs     []int64 `json:"postIds"`
	Remark      string  `json:"remark"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateUserDTO) Validate() error {
	if d.UserName == "" {
		return ValidationError{Msg: "userName is required"}
	}
	if d.NickName == "" {
		return ValidationError{Msg: "nickName is required"}
	}
	if len(d.Password) < 5 {
		return ValidationError{Msg: "password must be at least 5 characters"}
	}
	return nil
}

type UpdateUserDTO struct {
	UserID      int64   `json:"userId"`
	DeptID      *int64  `json:"deptId"`
	NickName    string  `json:"nickName"`
	Email       string  `json:"email"`
	Phonenumber string  `json:"phonenumber"`
	Sex         string  `json:"sex"`
	Status      string  `json:"status"`
	RoleIDs     []int64 `json:"roleIds"`
	PostIDs     []int64 `json:"postIds"`
	Remark      string  `json:"remark"`
}

func (d UpdateUserDTO) Validate() error {
	if d.UserID == 0 {
		return ValidationError{Msg: "userId is required"}
	}
	if d.NickName == "" {
		return ValidationError{Msg: "nickName is required"}
	}
	return nil
}

type ResetPasswordDTO struct {
	UserID   int64  `json:"userId"`
	Password string `json:"password"`
}

func (d ResetPasswordDTO) Validate() error {
	if d.UserID == 0 {
		return ValidationError{Msg: "userId is required"}
	}
	if len(d.Password) < 5 {
		return ValidationError{Msg: "password must be at least 5 characters"}
	}
	return nil
}

type ChangeStatusDTO struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

func (d ChangeStatusDTO) Validate() error {
	if d.UserID == 0 {
		return ValidationError{Msg: "userId is required"}
	}
	if d.Status != "0" && d.Status != "1" {
		return ValidationError{Msg: "status must be 0 or 1"}
	}
	return nil
}

type AuthRoleDTO struct {
	UserID  int64   `json:"userId"`
	RoleIDs []int64 `json:"roleIds"`
}
