package media

type ErrorCode string

const (
	ErrorCodeValidation  ErrorCode = "validation_error"
	ErrorCodeForbidden   ErrorCode = "forbidden"
	ErrorCodeTooLarge    ErrorCode = "too_large"
	ErrorCodeUnsupported ErrorCode = "unsupported_media_type"
	ErrorCodeInternal    ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
