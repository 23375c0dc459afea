package engine

import "fmt"

// SynthError is a synthesis-time configuration error. It names the
// offending resource so graph problems are diagnosable from the message
// alone. Any SynthError aborts the whole synthesis run.
type SynthError struct {
	Code     string `json:"code"`
	Resource string `json:"resource,omitempty"`
	Message  string `json:"message"`
}

func (e *SynthError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s [%s]: %s", e.Code, e.Resource, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSynthError(code, resource, msg string) *SynthError {
	return &SynthError{Code: code, Resource: resource, Message: msg}
}

func UnknownKindError(kind, resource string) *SynthError {
	return &SynthError{
		Code:     "UNKNOWN_KIND",
		Resource: resource,
		Message:  fmt.Sprintf("unknown resource kind: %s", kind),
	}
}

func InvalidIdentityError(resource string, err error) *SynthError {
	return &SynthError{
		Code:     "INVALID_IDENTITY",
		Resource: resource,
		Message:  err.Error(),
	}
}

func DuplicateResourceError(resource string) *SynthError {
	return &SynthError{
		Code:     "DUPLICATE_RESOURCE",
		Resource: resource,
		Message:  "a resource with this identity is already defined",
	}
}

func InvalidSpecError(resource string, err error) *SynthError {
	return &SynthError{
		Code:     "INVALID_SPEC",
		Resource: resource,
		Message:  err.Error(),
	}
}

func UnsupportedBindingError(consumer, producer string) *SynthError {
	return &SynthError{
		Code:     "UNSUPPORTED_BINDING",
		Resource: producer,
		Message:  fmt.Sprintf("%s is not a legal principal for %s", consumer, producer),
	}
}

func UnknownOperationError(resource, op string) *SynthError {
	return &SynthError{
		Code:     "UNKNOWN_OPERATION",
		Resource: resource,
		Message:  fmt.Sprintf("operation %q is outside the producer's vocabulary", op),
	}
}

func EmptyOperationsError(resource string) *SynthError {
	return &SynthError{
		Code:     "EMPTY_OPERATIONS",
		Resource: resource,
		Message:  "binding declares no operations",
	}
}

func UnknownResourceError(resource string) *SynthError {
	return &SynthError{
		Code:     "UNKNOWN_RESOURCE",
		Resource: resource,
		Message:  "resource is not defined in the graph",
	}
}

func UnsupportedFeatureError(resource, target, feature string) *SynthError {
	return &SynthError{
		Code:     "UNSUPPORTED_FEATURE",
		Resource: resource,
		Message:  fmt.Sprintf("target %s cannot express %s", target, feature),
	}
}

func SchemaValidationError(resource string, err error) *SynthError {
	return &SynthError{
		Code:     "SCHEMA_VALIDATION",
		Resource: resource,
		Message:  err.Error(),
	}
}
