package device

import "errors"

var (
	// ErrSchema indicates a malformed capability or property declaration
	ErrSchema = errors.New("device: invalid schema")

	// ErrDeviceValidation indicates a malformed device declaration
	ErrDeviceValidation = errors.New("device: invalid device")

	// ErrDeviceQuery indicates a device's query hooks failed
	ErrDeviceQuery = errors.New("device: query failed")

	// ErrDeviceAction indicates a device's action hooks failed
	ErrDeviceAction = errors.New("device: action failed")
)

// ErrorCode is a protocol error code reported to the platform
type ErrorCode string

// Error codes understood by the platform
const (
	CodeInvalidAction      ErrorCode = "INVALID_ACTION"
	CodeInvalidValue       ErrorCode = "INVALID_VALUE"
	CodeDeviceUnreachable  ErrorCode = "DEVICE_UNREACHABLE"
	CodeDeviceBusy         ErrorCode = "DEVICE_BUSY"
	CodeDeviceNotFound     ErrorCode = "DEVICE_NOT_FOUND"
	CodeNotSupportedInMode ErrorCode = "NOT_SUPPORTED_IN_CURRENT_MODE"
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// CodeError carries a protocol error code out of a hook.
// Code may be any string the platform understands.
type CodeError struct {
	Code ErrorCode
	Err  error
}

// NewCodeError returns a CodeError with code wrapping err
func NewCodeError(code ErrorCode, err error) *CodeError {
	return &CodeError{Code: code, Err: err}
}

func (e *CodeError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

// CodeOf returns the protocol error code carried by err,
// or CodeInternalError if there is none.
func CodeOf(err error) ErrorCode {
	var ce *CodeError
	if errors.As(err, &ce) && ce.Code != "" {
		return ce.Code
	}
	return CodeInternalError
}
