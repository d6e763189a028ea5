package permission

import (
	"fmt"
	"strings"

	roleModel "github.com/frahmantamala/admin-management/internal/core/datamodel/role"
)

// ScopeInput carries everything the data-scope builder needs about the
// requesting user. Callers must short-circuit the super administrator before
// building; the builder itself never sees admin requests.
type ScopeInput struct {
	UserID int64
	DeptID int64
	Roles  []roleModel.Role
}

// BuildDataScope translates the user's role data-scope policies into a SQL
// predicate restricting visible rows by department or owner. An empty return
// means no restriction.
//
// Policy "1" (all data) dominates: one unrestricted role makes the whole
// result unrestricted. The remaining policies contribute OR-joined,
// deduplicated conditions:
//
//	"2" custom list    dept in the role's sys_role_dept associations
//	"3" own dept       dept equals the user's department
//	"4" dept and below dept equals, or has the user's department in its
//	                   ancestor path
//	"5" self only      rows owned by the user id
func BuildDataScope(in ScopeInput, deptAlias, userAlias string) string {
	if deptAlias == "" {
		deptAlias = "d"
	}
	if userAlias == "" {
		userAlias = "u"
	}

	var conditions []string
	seen := make(map[string]bool)
	add := func(cond string) {
		if !seen[cond] {
			seen[cond] = true
			conditions = append(conditions, cond)
		}
	}

	for _, role := range in.Roles {
		switch role.DataScope {
		case roleModel.ScopeAll:
			return ""
		case roleModel.ScopeCustom:
			add(fmt.Sprintf("%s.dept_id IN (SELECT dept_id FROM sys_role_dept WHERE role_id = %d)", deptAlias, role.RoleID))
		case roleModel.ScopeDept:
			add(fmt.Sprintf("%s.dept_id = %d", deptAlias, in.DeptID))
		case roleModel.ScopeDeptAndChild:
			// Ancestors is a comma-joined id path, so wrap both sides with
			// commas for an exact-segment match.
			add(fmt.Sprintf(
				"%s.dept_id IN (SELECT dept_id FROM sys_dept WHERE dept_id = %d OR ',' || ancestors || ',' LIKE '%%,%d,%%')",
				deptAlias, in.DeptID, in.DeptID))
		case roleModel.ScopeSelf:
			add(fmt.Sprintf("%s.user_id = %d", userAlias, in.UserID))
		}
	}

	if len(conditions) == 0 {
		return ""
	}
	return "(" + strings.Join(conditions, " OR ") + ")"
}
