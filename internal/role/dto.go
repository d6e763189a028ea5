package role

type QueryDTO struct {
	RoleName string `json:"roleName"`
	RoleKey  string `json:"roleKey"`
	Status   string `json:"status"`
	PageNum  int    `json:"pageNum"`
	PageSize int    `json:"pageSize"`
}

func (q *QueryDTO) Normalize() {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type CreateRoleDTO struct {
	RoleName string  `json:"roleName"`
	RoleKey  string  `json:"roleKey"`
	RoleSort int     `json:"roleSort"`
	Status   string  `json:"status"`
	MenuIDs  []int64 `json:"menuIds"`
	Remark   string  `json:"remark"`
}

func (d CreateRoleDTO) Validate() error {
	if d.RoleName == "" {
		return ValidationError{Msg: "roleName is required"}
	}
	if d.RoleKey == "" {
		return ValidationError{Msg: "roleKey is required"}
	}
	return nil
}

type UpdateRoleDTO struct {
	RoleID   int64   `json:"roleId"`
	RoleName string  `json:"roleName"`
	RoleKey  string  `json:"roleKey"`
	RoleSort int     `json:"roleSort"`
	Status   string  `json:"status"`
	MenuIDs  []int64 `json:"menuIds"`
	Remark   string  `json:"remark"`
}

func (d UpdateRoleDTO) Validate() error {
	if d.RoleID == 0 {
		return ValidationError{Msg: "roleId is required"}
	}
	if d.RoleName == "" {
		return ValidationError{Msg: "roleName is required"}
	}
	if d.RoleKey == "" {
		return ValidationError{Msg: "roleKey is required"}
	}
	return nil
}

// DataScopeDTO updates a role's row-visibility policy; DeptIDs only applies
// to the custom policy.
type DataScopeDTO struct {
	RoleID    int64   `json:"roleId"`
	DataScope string  `json:"dataScope"`
	DeptIDs   []int64 `json:"deptIds"`
}

func (d DataScopeDTO) Validate() error {
	if d.RoleID == 0 {
		return ValidationError{Msg: "roleId is required"}
	}
	switch d.DataScope {
	case "1", "2", "3", "4", "5":
		return nil
	}
	return ValidationError{Msg: "dataScope must be between 1 and 5"}
}

type ChangeStatusDTO struct {
	RoleID int64  `json:"roleId"`
	Status string `json:"status"`
}

func (d ChangeStatusDTO) Validate() error {
	if d.RoleID == 0 {
		return ValidationError{Msg: "roleId is required"}
	}
	if d.Status != "0" && d.Status != "1" {
		return ValidationError{Msg: "status must be 0 or 1"}
	}
	return nil
}

// AuthUserDTO grants or revokes one role for a batch of users.
type AuthUserDTO struct {
	RoleID  int64   `json:"roleId"`
	UserIDs []int64 `json:"userIds"`
}

func (d AuthUserDTO) Validate() error {
	if d.RoleID == 0 {
		return ValidationError{Msg: "roleId is required"}
	}
	if len(d.UserIDs) == 0 {
		return ValidationError{Msg: "userIds is required"}
	}
	return nil
}
