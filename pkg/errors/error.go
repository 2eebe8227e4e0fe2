package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

type Type string

const (
	ConfigError           Type = "ConfigError"
	RootNotFoundError     Type = "RootNotFoundError"
	NotADirectoryError    Type = "NotADirectoryError"
	SelectorNotFoundError Type = "SelectorNotFoundError"
	SelectorError         Type = "SelectorError"
	CacheError            Type = "CacheError"
	ActionError           Type = "ActionError"
	InternalError         Type = "InternalError"
)

type Fields map[string]interface{}

type Error struct {
	Message  string `json:"message"`
	Type     Type   `json:"type"`
	Internal error  `json:"-"`

	Fields Fields `json:"fields"`
}

var nilError = Error{}

func New(message string, errorType Type, fields ...interface{}) Error {
	return Error{
		Message: message,
		Type:    errorType,
		Fields:  argsToFields(fields),
	}
}

func Nil() Error {
	return nilError
}

func NewInternalError(message string, errorType Type, err error, fields ...interface{}) Error {
	return New(message, errorType, fields...).WithInternal(pkgerrors.Wrap(err, message))
}

func (e Error) WithInternal(err error) Error {
	e.Internal = err
	return e
}

func (e Error) Wrap(message string) Error {
	e.Internal = pkgerrors.Wrap(e.Internal, message)
	return e
}

func (e Error) WithStackTrace() Error {
	e.Internal = pkgerrors.WithStack(e.Internal)
	return e
}

func (e Error) IsNil() bool {
	return e.Internal == nil && e.Message == "" && e.Type == ""
}

func (e Error) IsNotNil() bool {
	return !e.IsNil()
}

func (e Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e Error) Unwrap() error {
	return e.Internal
}

func (e Error) MarshalLogObject(oe zapcore.ObjectEncoder) error {
	oe.AddString("message", e.Message)
	oe.AddString("type", string(e.Type))
	if e.Internal != nil {
		oe.AddString("internal", e.Internal.Error())
	}
	return oe.AddReflected("fields", e.Fields)
}

// IsType reports whether err, or anything it wraps, is an Error of the given type.
func IsType(err error, errorType Type) bool {
	var e Error
	if !pkgerrors.As(err, &e) {
		return false
	}
	return e.Type == errorType
}

func argsToFields(args []interface{}) Fields {
	if len(args) == 0 {
		return Fields{}
	}

	fields := make(Fields)

	for i := 0; i < len(args); {
		// Make sure this element isn't a dangling key.
		if i == len(args)-1 {
			break
		}

		key, val := args[i], args[i+1]
		i += 2

		keyStr, ok := key.(string)
		if !ok {
			continue
		}
		fields[keyStr] = val
	}

	return fields
}
