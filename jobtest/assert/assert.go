/*
Package assert holds the few assertions shared by the tests of this
repository. Every failure stops the test.
*/
package assert

import (
	"reflect"
	"testing"

	"github.com/iov-one/jobchain/errors"
)

// Tester is the part of testing.TB the assertions use.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails unless value is nil, typed nil pointers included. Errors are
// printed with %+v to show their stack trace.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want nil, got %+v", value)
	}
}

func NotNil(t Tester, value interface{}) {
	t.Helper()
	if isNil(value) {
		t.Fatal("want a value, got nil")
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("no panic")
		}
	}()
	fn()
}

// IsErr fails unless got is of the kind of want. A nil *errors.Error want
// accepts only a nil got.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if kind, ok := want.(interface{ Is(error) bool }); ok && kind.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}

// FieldError requires err to hold exactly one error for field, of the kind
// of want. With a nil want, err must hold no error for field.
func FieldError(t testing.TB, err error, field string, want *errors.Error) {
	t.Helper()
	found := errors.FieldErrors(err, field)
	if want == nil && len(found) == 0 {
		return
	}
	if want != nil && len(found) == 1 {
		if !want.Is(found[0]) {
			t.Fatalf("field %q: want %q, got %q", field, want, found[0])
		}
		return
	}
	for i, e := range found {
		t.Logf("field %q error %d: %q", field, i+1, e)
	}
	t.Fatalf("field %q: want %d errors, got %d", field, btoi(want != nil), len(found))
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
