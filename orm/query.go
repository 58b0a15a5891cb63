package orm

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

// ConsumeIterator will read all remaining data into an
// array and release the iterator
func ConsumeIterator(itr jobchain.Iterator) ([]jobchain.Model, error) {
	defer itr.Release()

	var res []jobchain.Model
	for {
		key, value, err := itr.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, jobchain.Model{Key: key, Value: value})
	}
}

func queryPrefix(db jobchain.ReadOnlyKVStore, prefix []byte) ([]jobchain.Model, error) {
	itr, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr)
}

// prefixRange turns a prefix into (start, end) to create
// and iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed?....
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}

	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}

// RegisterQuery will register a root query (literal keys)
// under "/"
func RegisterQuery(qr jobchain.QueryRouter) {
	qr.Register("/", rawQuery{})
}

type rawQuery struct{}

// Query returns the raw stored value for a key, or every entry sharing
// a prefix.
func (rawQuery) Query(db jobchain.ReadOnlyKVStore, mod string, data []byte) ([]jobchain.Model, error) {
	switch mod {
	case jobchain.KeyQueryMod:
		val, err := db.Get(data)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, nil
		}
		return []jobchain.Model{jobchain.Pair(data, val)}, nil
	case jobchain.PrefixQueryMod:
		return queryPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}
