package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field wraps err with the name of the message or model field that
// caused it. It returns nil if err is nil.
//
// Use Go naming for the field name, with dot notation for nested
// fields, for example Escrow or Vault.Owner.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

// Cause implements the causer interface.
func (err *fieldError) Cause() error {
	return err.parent
}

// Field returns the name of the field this error was created for.
func (err *fieldError) Field() string {
	return err.field
}

// FieldName returns the field name attached to err by Field, or an
// empty string.
func FieldName(err error) string {
	for !isNilErr(err) {
		if f, ok := err.(*fieldError); ok {
			return f.field
		}
		c, ok := err.(causer)
		if !ok {
			return ""
		}
		err = c.Cause()
	}
	return ""
}
