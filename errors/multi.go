package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored and
// nested multi errors are flattened.
//
// If no non-nil error is provided, nil is returned. If only one error is
// provided, that error is returned as it is.
func Append(errs ...error) error {
	var me multiErr
	for _, err := range errs {
		if errIsNil(err) {
			continue
		}
		if u, ok := err.(unpacker); ok {
			me = append(me, u.Unpack()...)
			continue
		}
		me = append(me, err)
	}
	switch len(me) {
	case 0:
		return nil
	case 1:
		return me[0]
	default:
		return me
	}
}

// multiErr groups several errors. The ABCI code of the first error is used,
// consistent with a fail fast approach.
type multiErr []error

func (me multiErr) Error() string {
	points := make([]string, len(me))
	for i, err := range me {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(me), strings.Join(points, "\n\t"))
}

// Unpack returns all grouped errors.
func (me multiErr) Unpack() []error {
	return me
}

// ABCICode returns the code of the first error.
func (me multiErr) ABCICode() uint32 {
	if len(me) == 0 {
		return SuccessABCICode
	}
	return abciCode(me[0])
}
