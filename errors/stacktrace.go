package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace found while unwrapping given
// error, or nil if none of the layers carries one.
func stackTrace(err error) errors.StackTrace {
	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
}

// Format implements fmt.Formatter.
//
//	%s is just the error message
//	%v is the error message followed by the place where it was created
//	%+v is the error message followed by the full stack trace
func (e *wrappedError) Format(s fmt.State, verb rune) {
	if verb == 's' {
		io.WriteString(s, e.Error())
		return
	}
	st := stackTrace(e)
	if len(st) == 0 {
		io.WriteString(s, e.Error())
		return
	}
	if s.Flag('+') {
		fmt.Fprintf(s, "%s%+v", e.Error(), st)
		return
	}
	fmt.Fprintf(s, "%s [%v]", e.Error(), creationFrame(st))
}

// creationFrame returns the first frame that does not belong to the
// implementation of this package.
func creationFrame(st errors.StackTrace) errors.Frame {
	for _, f := range st {
		src := fmt.Sprintf("%+s", f)
		if strings.HasPrefix(src, thisPkg) && !strings.Contains(src, "_test.go") {
			continue
		}
		return f
	}
	return st[0]
}

const thisPkg = "github.com/iov-one/jobchain/errors."
