package orm

import (
	"bytes"
	"sort"

	"github.com/iov-one/jobchain/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// RefSet is the value of a non unique index entry. Refs are primary keys
// kept in ascending byte order without duplicates.
type RefSet struct {
	Refs [][]byte `json:"refs"`
}

var _ CloneableData = (*RefSet)(nil)

// search returns the position of ref, or where it would be inserted.
func (s *RefSet) search(ref []byte) (int, bool) {
	i := sort.Search(len(s.Refs), func(n int) bool {
		return bytes.Compare(s.Refs[n], ref) >= 0
	})
	return i, i < len(s.Refs) && bytes.Equal(s.Refs[i], ref)
}

func (s *RefSet) Add(ref []byte) error {
	i, ok := s.search(ref)
	if ok {
		return errors.Wrapf(errors.ErrDuplicate, "reference %X", ref)
	}
	s.Refs = append(s.Refs[:i], append([][]byte{ref}, s.Refs[i:]...)...)
	return nil
}

func (s *RefSet) Remove(ref []byte) error {
	i, ok := s.search(ref)
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "reference %X", ref)
	}
	s.Refs = append(s.Refs[:i], s.Refs[i+1:]...)
	return nil
}

func (s *RefSet) Len() int {
	return len(s.Refs)
}

func (s *RefSet) Copy() CloneableData {
	return &RefSet{Refs: append([][]byte(nil), s.Refs...)}
}

// Validate rejects an empty set, which is never stored.
func (s *RefSet) Validate() error {
	if len(s.Refs) == 0 {
		return errors.Wrap(errors.ErrEmpty, "reference set")
	}
	return nil
}

func (s *RefSet) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(s)
}

func (s *RefSet) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, s); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return nil
}
