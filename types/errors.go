package types

import "fmt"

const (
	ErrorName = "Error"
	ReadError = "ReadError"
	NameError = "NameError"
	TypeError = "TypeError"
)

// Error is a raised condition. It is a Value, so try*/catch* can bind it, and
// a Go error, so it travels up through ordinary error returns.
type Error struct {
	Payload Value
	Name    string
	Cause   Value
}

func NewError(payload Value) *Error {
	return &Error{Payload: payload, Name: ErrorName, Cause: Nil}
}

// Throw raises an arbitrary value, as the throw builtin does.
func Throw(payload Value) error {
	return NewError(payload)
}

func ReadErrorf(format string, args ...interface{}) *Error {
	return named(ReadError, format, args...)
}

func TypeErrorf(format string, args ...interface{}) *Error {
	return named(TypeError, format, args...)
}

func NameErrorFor(key string) *Error {
	return named(NameError, "'%s' not found", key)
}

func named(name, format string, args ...interface{}) *Error {
	return &Error{Payload: String(fmt.Sprintf(format, args...)), Name: name, Cause: Nil}
}

func (e *Error) Error() string {
	if s, ok := e.Payload.(String); ok {
		return string(s)
	}
	return fmt.Sprintf("%s with %s payload", e.Name, TypeName(e.Payload))
}

func (e *Error) Unwrap() error {
	if c, ok := e.Cause.(*Error); ok {
		return c
	}
	return nil
}

// Is matches another *Error of the same name, so a bare &Error{Name: NameError}
// works as a target for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Payload == nil && t.Name == e.Name
}
