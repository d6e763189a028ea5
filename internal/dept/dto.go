package dept

import deptModel "github.com/frahmantamala/admin-management/internal/core/datamodel/dept"

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type CreateDeptDTO struct {
	ParentID int64  `json:"parentId"`
	DeptName string `json:"deptName"`
	OrderNum int    `json:"orderNum"`
	Leader   string `json:"leader"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

func (d CreateDeptDTO) Validate() error {
	if d.DeptName == "" {
		return ValidationError{Msg: "deptName is required"}
	}
	return nil
}

type UpdateDeptDTO struct {
	DeptID   int64  `json:"deptId"`
	ParentID int64  `json:"parentId"`
	DeptName string `json:"deptName"`
	OrderNum int    `json:"orderNum"`
	Leader   string `json:"leader"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Status   string `json:"status"`
}

func (d UpdateDeptDTO) Validate() error {
	if d.DeptID == 0 {
		return ValidationError{Msg: "deptId is required"}
	}
	if d.DeptID == d.ParentID {
		return ValidationError{Msg: "a department cannot be its own parent"}
	}
	if d.DeptName == "" {
		return ValidationError{Msg: "deptName is required"}
	}
	return nil
}

// TreeNode is one department with nested children.
type TreeNode struct {
	*deptModel.Dept
	Children []*TreeNode `json:"children,omitempty"`
}
