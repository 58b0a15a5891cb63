package iavl

import (
	"testing"

	"github.com/iov-one/jobchain/errors"
)

func TestRelease(t *testing.T) {
	// Release while the producer is still active must not block or panic.
	it := newLazyIterator()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			if it.add(nil, nil) {
				break
			}
		}
		it.finish()
		close(done)
	}()
	it.Release()
	it.Release()
	<-done

	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want iterator done, got %+v", err)
	}
}

func TestLazyIteratorOrder(t *testing.T) {
	it := newLazyIterator()
	go func() {
		for _, k := range []string{"a", "b", "c"} {
			if it.add([]byte(k), []byte(k+k)) {
				break
			}
		}
		it.finish()
	}()
	defer it.Release()

	var got []string
	for {
		k, v, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		if err != nil {
			t.Fatalf("next: %+v", err)
		}
		if string(v) != string(k)+string(k) {
			t.Fatalf("unexpected value %q for %q", v, k)
		}
		got = append(got, string(k))
	}
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("unexpected keys: %v", got)
	}
}
