package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored. If all
// given errors are nil (or no error is given), nil is returned. A single
// non-nil error is returned as is, without any multi error wrapping.
func Append(errs ...error) error {
	var flat multiError
	for _, err := range errs {
		switch e := err.(type) {
		case nil:
			// Ignore.
		case multiError:
			flat = append(flat, e...)
		default:
			if !isNilErr(err) {
				flat = append(flat, err)
			}
		}
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return flat
	}
}

// multiError is a collection of errors that acts as a single error. It does
// not flatten into a cause chain so that each contained error keeps its own
// chain intact.
type multiError []error

func (e multiError) Error() string {
	switch len(e) {
	case 0:
		return "<nil>"
	case 1:
		return e[0].Error()
	}

	points := make([]string, len(e))
	for i, err := range e {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(e), strings.Join(points, "\n\t"))
}

// Unpack returns all errors that this instance is clubbing together.
func (e multiError) Unpack() []error {
	return e
}

// unpacker is implemented by an error that clubs together many errors and
// allows access to all of them.
type unpacker interface {
	Unpack() []error
}
