package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches a field path to err, so that a client can tell which part
// of a message or model was rejected. Nil err gives nil.
//
// Paths follow Go naming with dots for nesting and indexes for list
// elements, for example Job.Price or Parties.1.Address.
func Field(path string, err error, description string, args ...interface{}) error {
	if errIsNil(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{path: path, desc: description, parent: err}
}

// AppendField adds the field error built from fieldErr to errs. It is the
// usual building block of Validate methods.
func AppendField(errs error, path string, fieldErr error) error {
	return Append(errs, Field(path, fieldErr, ""))
}

type fieldError struct {
	path   string
	desc   string
	parent error
}

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.path, e.desc, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.path, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

func (e *fieldError) Field() string {
	return e.path
}

type fielder interface {
	Field() string
}

// FieldErrors collects every error in the err tree that was created for the
// given path. Once a match is found its children are not inspected.
func FieldErrors(err error, path string) []error {
	var found []error
	collectFields(err, path, &found)
	return found
}

func collectFields(err error, path string, found *[]error) {
	for !errIsNil(err) {
		if f, ok := err.(fielder); ok && f.Field() == path {
			*found = append(*found, err)
			return
		}
		// a multi error carries all of its children, Cause must not be
		// followed afterwards.
		if u, ok := err.(unpacker); ok {
			for _, child := range u.Unpack() {
				collectFields(child, path, found)
			}
			return
		}
		c, ok := err.(causer)
		if !ok {
			return
		}
		err = c.Cause()
	}
}
