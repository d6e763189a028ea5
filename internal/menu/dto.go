package menu

import menuModel "github.com/frahmantamala/admin-management/internal/core/datamodel/menu"

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type QueryDTO struct {
	MenuName string `json:"menuName"`
	Status   string `json:"status"`
}

type CreateMenuDTO struct {
	MenuName  string `json:"menuName"`
	ParentID  int64  `json:"parentId"`
	OrderNum  int    `json:"orderNum"`
	Path      string `json:"path"`
	Component string `json:"component"`
	MenuType  string `json:"menuType"`
	Visible   string `json:"visible"`
	Status    string `json:"status"`
	Perms     string `json:"perms"`
	Icon      string `json:"icon"`
	Remark    string `json:"remark"`
}

func (d CreateMenuDTO) Validate() error {
	if d.MenuName == "" {
		return ValidationError{Msg: "menuName is required"}
	}
	switch d.MenuType {
	case menuModel.TypeDirectory, menuModel.TypePage, menuModel.TypeButton:
		return nil
	}
	return ValidationError{Msg: "menuType must be M, C, or F"}
}

type UpdateMenuDTO struct {
	MenuID    int64  `json:"menuId"`
	MenuName  string `json:"menuName"`
	ParentID  int64  `json:"parentId"`
	OrderNum  int    `json:"orderNum"`
	Path      string `json:"path"`
	Component string `json:"component"`
	MenuType  string `json:"menuType"`
	Visible   string `json:"visible"`
	Status    string `json:"status"`
	Perms     string `json:"perms"`
	Icon      string `json:"icon"`
	Remark    string `json:"remark"`
}

func (d UpdateMenuDTO) Validate() error {
	if d.MenuID == 0 {
		return ValidationError{Msg: "menuId is required"}
	}
	if d.MenuID == d.ParentID {
		return ValidationError{Msg: "a menu cannot be its own parent"}
	}
	return CreateMenuDTO{MenuName: d.MenuName, MenuType: d.MenuType}.Validate()
}

// TreeNode is one menu with its children nested for the management UI.
type TreeNode struct {
	*menuModel.Menu
	Children []*TreeNode `json:"children,omitempty"`
}
