package session

import (
	"context"
	"time"
)

// KeyPrefix for session records in the key-value store.
const KeyPrefix = "login_tokens:"

// UserProfile is the public snapshot of the account embedded in the session
// record and returned by login/getInfo. It never carries the password hash.
type UserProfile struct {
	UserID      int64  `json:"userId"`
	UserName    string `json:"userName"`
	NickName    string `json:"nickName"`
	Avatar      string `json:"avatar"`
	Email       string `json:"email"`
	Phonenumber string `json:"phonenumber"`
	Sex         string `json:"sex"`
	DeptID      *int64 `json:"deptId"`
}

// LoginUser is one authenticated login. It is the sole source of truth for
// the session's permissions while it lives; requests never re-derive them
// from the database.
type LoginUser struct {
	Token       string      `json:"token"`
	UserID      int64       `json:"userId"`
	DeptID      *int64      `json:"deptId"`
	User        UserProfile `json:"user"`
	RoleIDs     []int64     `json:"roleIds"`
	RoleKeys    []string    `json:"roleKeys"`
	Permissions []string    `json:"permissions"`
	LoginTime   int64       `json:"loginTime"`
	ExpireTime  int64       `json:"expireTime"`
	IPAddr      string      `json:"ipaddr"`
	Browser     string      `json:"browser"`
	OS          string      `json:"os"`
}

// Remaining reports how much lifetime the record has left.
func (u *LoginUser) Remaining(now time.Time) time.Duration {
	return time.Duration(u.ExpireTime-now.UnixMilli()) * time.Millisecond
}

// Touch stamps a fresh login/expire window onto the record.
func (u *LoginUser) Touch(now time.Time, ttl time.Duration) {
	u.LoginTime = now.UnixMilli()
	u.ExpireTime = u.LoginTime + ttl.Milliseconds()
}

// Store holds serialized session records keyed by the opaque session id.
// Get returns (nil, nil) for absent or expired ids; writes are full-record
// last-writer-wins replacements.
type Store interface {
	Put(ctx context.Context, user *LoginUser) error
	Get(ctx context.Context, sessionID string) (*LoginUser, error)
	Delete(ctx context.Context, sessionID string) error
	Scan(ctx context.Context) ([]string, error)
}

type ctxKey string

const contextUserKey ctxKey = "loginUser"

// NewContext attaches the session record to the request context.
func NewContext(ctx context.Context, user *LoginUser) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

// FromContext returns the session record set by the authentication middleware.
func FromContext(ctx context.Context) (*LoginUser, bool) {
	user, ok := ctx.Value(contextUserKey).(*LoginUser)
	return user, ok && user != nil
}
