package gateway

import "fmt"

// APIError is the JSON error shape the gateway returns. Status drives the
// HTTP response code and is not serialized.
type APIError struct {
	Code    string   `json:"code"`
	Status  int      `json:"-"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *APIError `json:"error"`
}

func NewAPIError(code string, status int, msg string) *APIError {
	return &APIError{Code: code, Status: status, Message: msg}
}

func NotFoundError(table, key string) *APIError {
	return &APIError{
		Code:    "NOT_FOUND",
		Status:  404,
		Message: fmt.Sprintf("%s: no row with key %s", table, key),
	}
}

func AlreadyExistsError(table, key string) *APIError {
	return &APIError{
		Code:    "ALREADY_EXISTS",
		Status:  409,
		Message: fmt.Sprintf("%s: a row with key %s already exists", table, key),
	}
}

func SchemaViolationError(msg string, fields []string) *APIError {
	return &APIError{
		Code:    "SCHEMA_VALIDATION",
		Status:  422,
		Message: msg,
		Fields:  fields,
	}
}

func UnauthorizedError(msg string) *APIError {
	return &APIError{Code: "UNAUTHORIZED", Status: 401, Message: msg}
}

func ForbiddenError(msg string) *APIError {
	return &APIError{Code: "FORBIDDEN", Status: 403, Message: msg}
}

func BadRequestError(msg string) *APIError {
	return &APIError{Code: "BAD_REQUEST", Status: 400, Message: msg}
}

func BackendError(msg string) *APIError {
	return &APIError{Code: "BACKEND_ERROR", Status: 502, Message: msg}
}
