package auth

import (
	internaljwt "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/jwt"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeInternal     ErrorCode = "internal_error"
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

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

// Identity is the caller resolved from a verified access token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   internaljwt.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == internaljwt.RoleAdmin
}

type AuthResult struct {
	User   model.UserItem
	Tokens internaljwt.TokenResponse
}

type ProfileResult struct {
	User model.UserItem
}
