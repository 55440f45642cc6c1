package apperrors

import "errors"

// User-facing fallback messages
const (
	MsgInvalidResponse = "Invalid server response"
	MsgLoginFailed     = "Login failed"
	MsgRegisterFailed  = "Registration failed"
	MsgUnreachable     = "Unable to reach server"
	MsgFetchCourses    = "Failed to fetch courses"
	MsgNoEligibleYears = "No eligible years to assist based on your academic year."
	MsgStorage         = "Could not save your session"
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginFailed        = errors.New("login failed")
	ErrRegisterFailed     = errors.New("registration failed")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

// Backend errors
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrInvalidResponse    = errors.New("invalid server response")
	ErrFetchCourses       = errors.New("failed to fetch courses")
)

// Dashboard errors
var (
	ErrNoEligibleYears = errors.New("no eligible years")
	ErrYearNotEligible = errors.New("year not eligible")
	ErrInvalidSemester = errors.New("invalid semester")
)

// General errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrStorage          = errors.New("client storage failure")
)

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
	Details    map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithStatus records the upstream HTTP status that produced the error
func (e *CustomError) WithStatus(status int) *CustomError {
	e.StatusCode = status
	return e
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// UserMessage returns the message to show on the page for err. Messages
// carried by a CustomError are returned verbatim; anything else yields fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return fallback
}
