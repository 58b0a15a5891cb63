package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStackTrace(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"root error":      {err: ErrDuplicate.Newf("job %s", "j1"), want: "job j1: duplicate"},
		"fmt error":       {err: Wrap(fmt.Errorf("disk full"), "commit"), want: "commit: disk full"},
		"pkg/errors root": {err: Wrap(errors.New("bad block"), "replay"), want: "replay: bad block"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
			assert.NotNil(t, stackTrace(tc.err))

			full := fmt.Sprintf("%+v", tc.err)
			assert.Contains(t, full, tc.want)
			assert.Contains(t, full, "stacktrace_test.go")

			short := fmt.Sprintf("%v", tc.err)
			assert.True(t, strings.HasPrefix(short, tc.want), short)
			assert.Contains(t, short, "stacktrace_test.go")
			assert.NotContains(t, short, "\n")
		})
	}
}

func TestStackTraceAttachedOnce(t *testing.T) {
	inner := Wrap(ErrNotFound, "job j1")
	assert.Equal(t, stackTrace(inner), stackTrace(Wrap(inner, "release")))
}
