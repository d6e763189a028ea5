package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePermissionsChanged = "admin.permissions.changed"
	EventTypeOperation          = "admin.operation"
)

// PermissionsChangedPayload names the users whose live sessions must have
// their permission sets recomputed after a role or menu edit.
type PermissionsChangedPayload struct {
	RoleID  int64   `json:"role_id"`
	UserIDs []int64 `json:"user_ids"`
}

func NewPermissionsChangedEvent(roleID int64, userIDs []int64) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypePermissionsChanged,
		Timestamp: time.Now(),
		Data: PermissionsChangedPayload{
			RoleID:  roleID,
			UserIDs: userIDs,
		},
	}
}

// OperationPayload is one audit-log entry captured around a mutating handler.
type OperationPayload struct {
	Title         string    `json:"title"`
	BusinessType  int       `json:"business_type"`
	Method        string    `json:"method"`
	RequestMethod string    `json:"request_method"`
	OperName      string    `json:"oper_name"`
	OperURL       string    `json:"oper_url"`
	OperIP        string    `json:"oper_ip"`
	OperParam     string    `json:"oper_param"`
	Status        int       `json:"status"`
	ErrorMsg      string    `json:"error_msg"`
	OperTime      time.Time `json:"oper_time"`
	CostTime      int64     `json:"cost_time"`
}

func NewOperationEvent(payload OperationPayload) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeOperation,
		Timestamp: time.Now(),
		Data:      payload,
	}
}
