package sigs

import (
	"testing"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/jobtest"
	"github.com/iov-one/jobchain/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountNonce(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket()
	employer := jobtest.NewKey().PublicKey()

	acc, err := bucket.Account(db, employer.Address())
	require.NoError(t, err)
	assert.Nil(t, acc)

	acc, err = bucket.load(db, employer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), acc.Sequence)
	assert.Equal(t, employer, acc.Pubkey)

	assert.True(t, ErrInvalidSequence.Is(acc.use(1)))
	require.NoError(t, acc.use(0))
	assert.True(t, ErrInvalidSequence.Is(acc.use(0)))
	require.NoError(t, acc.use(1))
	require.NoError(t, bucket.save(db, acc))

	next, err := NextNonce(db, employer.Address())
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)

	next, err = NextNonce(db, jobtest.NewKey().PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(0), next)
}

func TestAccountValidate(t *testing.T) {
	worker := jobtest.NewKey().PublicKey()
	meta := &jobchain.Metadata{Schema: 1}

	cases := map[string]struct {
		acc     *Account
		wantErr *errors.Error
	}{
		"new account":           {acc: &Account{Metadata: meta, Pubkey: worker}},
		"used account":          {acc: &Account{Metadata: meta, Pubkey: worker, Sequence: 17}},
		"missing metadata":      {acc: &Account{Pubkey: worker}, wantErr: errors.ErrMetadata},
		"negative sequence":     {acc: &Account{Metadata: meta, Pubkey: worker, Sequence: -3}, wantErr: ErrInvalidSequence},
		"sequence without key":  {acc: &Account{Metadata: meta, Sequence: 1}, wantErr: errors.ErrEmpty},
		"zero sequence, no key": {acc: &Account{Metadata: meta}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if err := tc.acc.Validate(); !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestAccountAdvance(t *testing.T) {
	acc := &Account{Sequence: 5}
	require.NoError(t, acc.advance(0))
	require.NoError(t, acc.advance(10))
	assert.Equal(t, int64(15), acc.Sequence)

	acc.Sequence = maxSequence - 1
	require.NoError(t, acc.advance(1))
	assert.True(t, errors.ErrOverflow.Is(acc.advance(1)))
	assert.Equal(t, int64(maxSequence), acc.Sequence)
}
