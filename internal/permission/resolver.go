package permission

import (
	"context"
	"strings"

	roleModel "github.com/frahmantamala/admin-management/internal/core/datamodel/role"
)

// Repository is the read surface the resolver needs from the relational
// store.
type Repository interface {
	MenuPermsByUserID(ctx context.Context, userID int64) ([]string, error)
	RolesByUserID(ctx context.Context, userID int64) ([]roleModel.Role, error)
	UserIDsByRoleID(ctx context.Context, roleID int64) ([]int64, error)
}

// Resolver computes the effective permission set for a user at login or
// refresh time. Requests downstream read the cached set from the session
// record, never from here.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveByUserID returns the user's permission strings. The super
// administrator short-circuits to the wildcard sentinel regardless of
// role/menu contents. Menu perms columns may hold comma-delimited lists;
// entries are split, trimmed, and deduplicated.
func (r *Resolver) ResolveByUserID(ctx context.Context, userID int64) ([]string, error) {
	if IsAdminUser(userID) {
		return []string{AllPermission}, nil
	}

	raw, err := r.repo.MenuPermsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return splitDedup(raw), nil
}

// RoleKeysByUserID returns the user's role key set for role-requirement
// checks. Role keys may also encode multiple values comma-separated.
func (r *Resolver) RoleKeysByUserID(ctx context.Context, userID int64) ([]string, []int64, error) {
	roles, err := r.repo.RolesByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	rawKeys := make([]string, 0, len(roles))
	roleIDs := make([]int64, 0, len(roles))
	for _, role := range roles {
		rawKeys = append(rawKeys, role.RoleKey)
		roleIDs = append(roleIDs, role.RoleID)
	}
	return splitDedup(rawKeys), roleIDs, nil
}

// UserIDsByRoleID exposes the role membership lookup used by the broadcast
// path after a role edit.
func (r *Resolver) UserIDsByRoleID(ctx context.Context, roleID int64) ([]int64, error) {
	return r.repo.UserIDsByRoleID(ctx, roleID)
}

// DataScopeFor loads the user's live roles and builds the row-visibility
// predicate for them. Admin short-circuits to unrestricted.
func (r *Resolver) DataScopeFor(ctx context.Context, userID, deptID int64, deptAlias, userAlias string) (string, error) {
	if IsAdminUser(userID) {
		return "", nil
	}

	roles, err := r.repo.RolesByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return BuildDataScope(ScopeInput{UserID: userID, DeptID: deptID, Roles: roles}, deptAlias, userAlias), nil
}

func splitDedup(raw []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}
