package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserDisabled       ErrorCode = "USER_DISABLED"
	ErrCodeUserDeleted        ErrorCode = "USER_DELETED"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeBadSignature       ErrorCode = "BAD_SIGNATURE"
	ErrCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"
	ErrCodeCaptchaInvalid     ErrorCode = "CAPTCHA_INVALID"

	ErrCodeInsufficientPermission ErrorCode = "INSUFFICIENT_PERMISSION"
	ErrCodeAdminNotAllowed        ErrorCode = "ADMIN_NOT_ALLOWED"

	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserNameExists    ErrorCode = "USER_NAME_EXISTS"
	ErrCodePhoneExists       ErrorCode = "PHONE_EXISTS"
	ErrCodeEmailExists       ErrorCode = "EMAIL_EXISTS"
	ErrCodeRoleNotFound      ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleNameExists    ErrorCode = "ROLE_NAME_EXISTS"
	ErrCodeRoleKeyExists     ErrorCode = "ROLE_KEY_EXISTS"
	ErrCodeRoleAssigned      ErrorCode = "ROLE_ASSIGNED"
	ErrCodeMenuNotFound      ErrorCode = "MENU_NOT_FOUND"
	ErrCodeMenuHasChildren   ErrorCode = "MENU_HAS_CHILDREN"
	ErrCodeMenuAssigned      ErrorCode = "MENU_ASSIGNED"
	ErrCodeDeptNotFound      ErrorCode = "DEPT_NOT_FOUND"
	ErrCodeDeptNameExists    ErrorCode = "DEPT_NAME_EXISTS"
	ErrCodeDeptHasChildren   ErrorCode = "DEPT_HAS_CHILDREN"
	ErrCodeDeptHasUsers      ErrorCode = "DEPT_HAS_USERS"
	ErrCodeDeptDisabled      ErrorCode = "DEPT_DISABLED"
	ErrCodePostNotFound      ErrorCode = "POST_NOT_FOUND"
	ErrCodePostNameExists    ErrorCode = "POST_NAME_EXISTS"
	ErrCodePostCodeExists    ErrorCode = "POST_CODE_EXISTS"
	ErrCodePostAssigned      ErrorCode = "POST_ASSIGNED"
	ErrCodeDeleteSelf        ErrorCode = "DELETE_SELF"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Authentication failures share a generic user-facing message so the caller
// cannot tell which of username/password was wrong.
var (
	ErrInvalidCredentials = NewUnauthorizedError("invalid username or password", ErrCodeInvalidCredentials)
	ErrUserDisabled       = NewUnauthorizedError("user account is disabled", ErrCodeUserDisabled)
	ErrUserDeleted        = NewUnauthorizedError("user account has been deleted", ErrCodeUserDeleted)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
	ErrBadSignature       = NewUnauthorizedError("token signature is invalid", ErrCodeBadSignature)
	ErrSessionExpired     = NewUnauthorizedError("session expired, please login again", ErrCodeSessionExpired)
	ErrCaptchaInvalid     = NewValidationError("captcha is wrong or expired", ErrCodeCaptchaInvalid)

	ErrInsufficientPermission = NewForbiddenError("insufficient permissions", ErrCodeInsufficientPermission)
	ErrAdminNotAllowed        = NewForbiddenError("operating on the super administrator is not allowed", ErrCodeAdminNotAllowed)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
