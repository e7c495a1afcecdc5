package relay

import "errors"

// ValidationCode identifies the rule an admission request violated
type ValidationCode string

const (
	CodeInvalidFileType    ValidationCode = "InvalidFileType"
	CodeFileTooLarge       ValidationCode = "FileTooLarge"
	CodeContentTooLong     ValidationCode = "ContentTooLong"
	CodeInvalidEmbedFormat ValidationCode = "InvalidEmbedFormat"
)

// ValidationError represents a client-caused admission failure. It is
// surfaced synchronously at the boundary, before any job is queued.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError checks if the error is a ValidationError
func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
