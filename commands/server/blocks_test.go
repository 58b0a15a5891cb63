package server

import (
	"bytes"
	"testing"

	"github.com/iov-one/jobchain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/types"
)

func TestParseReplayArgs(t *testing.T) {
	cases := map[string]struct {
		args    []string
		want    *replayArgs
		wantErr *errors.Error
	}{
		"defaults": {
			args: []string{"abci.db", "block.json"},
			want: &replayArgs{abciDir: "abci.db", blockFile: "block.json", attempts: 10},
		},
		"all flags": {
			args: []string{"abci.db", "block.json", "-debug", "-until-diff", "-attempts=3"},
			want: &replayArgs{abciDir: "abci.db", blockFile: "block.json", debug: true, untilDiff: true, attempts: 3},
		},
		"missing block": {
			args:    []string{"abci.db"},
			wantErr: errors.ErrInput,
		},
		"unknown flag": {
			args:    []string{"abci.db", "block.json", "-max=2"},
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := parseReplayArgs(tc.args)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWriteBlock(t *testing.T) {
	var out bytes.Buffer
	err := writeBlock(&out, nil, 7)
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, 0, out.Len())

	block := types.MakeBlock(3, []types.Tx{types.Tx("job")}, nil, nil)
	block.ChainID = "test-chain"
	require.NoError(t, writeBlock(&out, block, 3))

	var back *types.Block
	require.NoError(t, cdc.UnmarshalJSON(out.Bytes(), &back))
	assert.Equal(t, int64(3), back.Height)
	assert.Equal(t, "test-chain", back.ChainID)
	assert.Equal(t, 1, len(back.Txs))
}
