package serverutils

// ValidationError is a failure caught before any network call: empty
// input, no file or URL, missing confirmation. Rendered as a 400.
type ValidationError struct {
	msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func (e *ValidationError) Error() string {
	return e.msg
}
