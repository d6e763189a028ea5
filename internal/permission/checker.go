package permission

// Reserved identifiers. User id 1 and role id 1 denote the super
// administrator, who bypasses every permission and data-scope check.
const (
	AdminUserID int64 = 1
	AdminRoleID int64 = 1

	// AllPermission is the wildcard sentinel granted to the super
	// administrator's session instead of enumerated permission strings.
	AllPermission = "*:*:*"

	// AdminRoleKey satisfies any role requirement.
	AdminRoleKey = "admin"
)

func IsAdminUser(userID int64) bool {
	return userID == AdminUserID
}

func IsAdminRole(roleID int64) bool {
	return roleID == AdminRoleID
}

// HasAnyPermission reports whether the session's permission set satisfies at
// least one of the required permissions (OR semantics). The wildcard
// sentinel satisfies everything.
func HasAnyPermission(userPerms []string, required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, userPerm := range userPerms {
		if userPerm == AllPermission {
			return true
		}
		for _, req := range required {
			if userPerm == req {
				return true
			}
		}
	}
	return false
}

// HasAnyRole reports whether the session holds at least one of the required
// role keys. The admin role key satisfies everything.
func HasAnyRole(roleKeys []string, required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, key := range roleKeys {
		if key == AdminRoleKey {
			return true
		}
		for _, req := range required {
			if key == req {
				return true
			}
		}
	}
	return false
}
