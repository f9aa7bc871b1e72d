package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidQuantity  ErrorCode = "INVALID_QUANTITY"
	ErrCodeInvalidPrice     ErrorCode = "INVALID_PRICE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidFuelType  ErrorCode = "INVALID_FUEL_TYPE"
	ErrCodeInvalidPayment   ErrorCode = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidManager   ErrorCode = "INVALID_MANAGER"
	ErrCodeInvalidPump      ErrorCode = "INVALID_PUMP"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"

	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeAccessDenied       ErrorCode = "ACCESS_DENIED"
	ErrCodeRoleNotAllowed     ErrorCode = "ROLE_NOT_ALLOWED"
	ErrCodeInventoryReadOnly  ErrorCode = "INVENTORY_READ_ONLY"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInvalidResetToken  ErrorCode = "INVALID_RESET_TOKEN"

	ErrCodeStationNameTaken      ErrorCode = "STATION_NAME_TAKEN"
	ErrCodeManagerAssignment     ErrorCode = "MANAGER_ASSIGNMENT_CONFLICT"
	ErrCodeCapacityExceeded      ErrorCode = "CAPACITY_EXCEEDED"
	ErrCodeInsufficientInventory ErrorCode = "INSUFFICIENT_INVENTORY"
	ErrCodeDuplicateUser         ErrorCode = "DUPLICATE_USER"
	ErrCodeDuplicateCompany      ErrorCode = "DUPLICATE_COMPANY"
	ErrCodeDuplicatePump         ErrorCode = "DUPLICATE_PUMP"
	ErrCodeDuplicateInventory    ErrorCode = "DUPLICATE_INVENTORY"
	ErrCodeUserInUse             ErrorCode = "USER_IN_USE"

	ErrCodePriceNotConfigured ErrorCode = "PRICE_NOT_CONFIGURED"
	ErrCodeInventoryNotFound  ErrorCode = "INVENTORY_NOT_FOUND"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"

	ErrCodeNotificationFailed ErrorCode = "NOTIFICATION_FAILED"
	ErrCodeTooManyRequests    ErrorCode = "TOO_MANY_REQUESTS"
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
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {

			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause and WithDetails return a copy so the package-level sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	c := *e
	c.Cause = cause
	return &c
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	c := *e
	c.Details = details
	return &c
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
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

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
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

var (
	ErrUnauthenticated    = NewUnauthorizedError("authentication required", ErrCodeUnauthenticated)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInvalidResetToken  = NewValidationError("password reset token is invalid or expired", ErrCodeInvalidResetToken)

	ErrAccessDenied      = NewForbiddenError("access denied", ErrCodeAccessDenied)
	ErrRoleNotAllowed    = NewForbiddenError("role is not allowed to perform this action", ErrCodeRoleNotAllowed)
	ErrInventoryReadOnly = NewForbiddenError("managers cannot update inventory directly", ErrCodeInventoryReadOnly)

	ErrStationNameTaken      = NewConflictError("a station with this name already exists", ErrCodeStationNameTaken)
	ErrCapacityExceeded      = NewConflictError("quantity exceeds inventory capacity", ErrCodeCapacityExceeded)
	ErrInsufficientInventory = NewConflictError("not enough fuel in inventory for this sale", ErrCodeInsufficientInventory)
	ErrDuplicateUser         = NewConflictError("username or email already in use", ErrCodeDuplicateUser)
	ErrDuplicateCompany      = NewConflictError("a company with this name already exists", ErrCodeDuplicateCompany)
	ErrDuplicatePump         = NewConflictError("pump number already used at this station", ErrCodeDuplicatePump)
	ErrDuplicateInventory    = NewConflictError("inventory for this fuel type already exists at this station", ErrCodeDuplicateInventory)
	ErrUserInUse             = NewConflictError("user still owns companies or is referenced by transactions", ErrCodeUserInUse)

	ErrPriceNotConfigured = NewNotFoundError("no price configured for fuel type", ErrCodePriceNotConfigured)
	ErrInventoryNotFound  = NewNotFoundError("no inventory for this fuel type at the station", ErrCodeInventoryNotFound)

	ErrRateLimited = &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeTooManyRequests,
		Message:    "rate limit exceeded",
		StatusCode: http.StatusTooManyRequests,
	}
)

// NewManagerAssignmentConflict reports the company a manager is already bound to.
func NewManagerAssignmentConflict(manager, existingCompany, targetCompany string) *AppError {
	msg := fmt.Sprintf("Manager %s already manages a station for company %q. They cannot be assigned to a station under %q.",
		manager, existingCompany, targetCompany)
	return NewConflictError(msg, ErrCodeManagerAssignment).
		WithDetails(map[string]string{"existing_company": existingCompany})
}

func NewExternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeNotificationFailed,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is matches AppErrors by type and code so wrapped sentinels compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
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
