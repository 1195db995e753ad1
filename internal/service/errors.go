package service

import "errors"

// 领域错误分类，传输层负责映射到 HTTP 状态码
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateISBN      = errors.New("book with this ISBN already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthorized")
	ErrForbidden          = errors.New("not enough permissions")
	ErrNotFound           = errors.New("not found")
)

// ValidationError 字段级校验失败，detail 可以安全返回给调用方
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }
