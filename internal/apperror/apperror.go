// Package apperror описывает таксономию ошибок сервиса printflow:
// четырёхзначные коды, категории и соответствующие HTTP-статусы.
package apperror

import (
	"fmt"
	"strings"
)

// Category группирует коды ошибок по первой цифре.
type Category string

const (
	CategoryValidation     Category = "VALIDATION"
	CategoryBusiness       Category = "BUSINESS_RULE"
	CategoryAuthentication Category = "AUTHENTICATION"
	CategoryAuthorization  Category = "AUTHORIZATION"
	CategoryNotFound       Category = "NOT_FOUND"
	CategorySystem         Category = "SYSTEM"
)

// FieldError описывает ошибку валидации отдельного поля.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error описывает ошибку приложения с кодом из каталога.
type Error struct {
	Code    int
	Name    string
	Status  int
	Message string
	Fields  []FieldError

	cause error
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap возвращает исходную причину ошибки.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is сравнивает ошибки по коду, чтобы копии с уточнённым сообщением совпадали с эталоном каталога.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Category возвращает категорию ошибки по первой цифре кода.
func (e *Error) Category() Category {
	switch e.Code / 1000 {
	case 1:
		return CategoryValidation
	case 2:
		return CategoryBusiness
	case 3:
		return CategoryAuthentication
	case 4:
		return CategoryAuthorization
	case 5:
		return CategoryNotFound
	default:
		return CategorySystem
	}
}

// Internal сообщает, что ошибка относится к системным и её текст не должен уходить клиенту.
func (e *Error) Internal() bool {
	return e.Category() == CategorySystem && e.Status >= 500
}

func define(code int, name string, status int, message string) *Error {
	e := &Error{Code: code, Name: name, Status: status, Message: message}
	catalog[code] = e
	byMessage[strings.ToLower(message)] = e
	return e
}

// Withf возвращает копию ошибки с уточнённым сообщением.
func (e *Error) Withf(format string, args ...any) *Error {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	c.Fields = nil
	return &c
}

// WithFields возвращает копию ошибки со списком ошибок полей.
func (e *Error) WithFields(fields []FieldError) *Error {
	c := *e
	c.Fields = fields
	return &c
}

// Wrap возвращает копию ошибки, сохраняющую исходную причину.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.cause = cause
	return &c
}

// Lookup возвращает ошибку каталога по коду.
func Lookup(code int) (*Error, bool) {
	e, ok := catalog[code]
	return e, ok
}
