package orm

import (
	"testing"

	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/jobtest/assert"
)

func TestRefSet(t *testing.T) {
	var set RefSet
	for _, ref := range []string{"job7", "job10", "job2"} {
		assert.Nil(t, set.Add([]byte(ref)))
	}
	assert.Equal(t, toBytes([]string{"job10", "job2", "job7"}), set.Refs)
	assert.IsErr(t, errors.ErrDuplicate, set.Add([]byte("job2")))

	raw, err := set.Marshal()
	assert.Nil(t, err)
	var loaded RefSet
	assert.Nil(t, loaded.Unmarshal(raw))
	assert.Equal(t, set.Refs, loaded.Refs)

	snapshot := set.Copy()
	assert.Nil(t, set.Remove([]byte("job10")))
	assert.IsErr(t, errors.ErrNotFound, set.Remove([]byte("job10")))
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 3, snapshot.(*RefSet).Len())

	assert.Nil(t, set.Remove([]byte("job2")))
	assert.Nil(t, set.Remove([]byte("job7")))
	assert.IsErr(t, errors.ErrEmpty, set.Validate())
	assert.IsErr(t, errors.ErrModel, loaded.Unmarshal([]byte{0xff, 0xff}))
}
