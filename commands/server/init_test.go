package server

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/jobchain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const tmGenesis = `{
  "genesis_time": "2019-05-01T10:00:00Z",
  "chain_id": "test-chain-LgVOZ0",
  "validators": [{"power": "10", "name": ""}],
  "app_hash": ""
}`

func writeGenesis(t *testing.T, home string) string {
	t.Helper()
	genFile := filepath.Join(home, "config", "genesis.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(genFile), 0755))
	require.NoError(t, ioutil.WriteFile(genFile, []byte(tmGenesis), 0600))
	return genFile
}

func genOptions(args []string) (json.RawMessage, error) {
	if len(args) > 0 {
		return json.RawMessage(`{"cash": [], "owner": "` + args[0] + `"}`), nil
	}
	return json.RawMessage(`{"cash": []}`), nil
}

func TestInit(t *testing.T) {
	home, cleanup := tempHome(t)
	defer cleanup()
	genFile := writeGenesis(t, home)

	logger := log.NewNopLogger()
	require.NoError(t, InitCmd(genOptions, logger, home, nil))

	var doc genesisDoc
	bz, err := ioutil.ReadFile(genFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bz, &doc))
	// keep old values, and add our values
	assert.EqualValues(t, []byte(`"test-chain-LgVOZ0"`), doc["chain_id"])
	assert.NotEmpty(t, doc["validators"])
	assert.JSONEq(t, `{"cash": []}`, string(doc[appStateKey]))

	conf, err := LoadConfig(ConfigPath(home))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), conf)

	// the app state is never replaced silently
	err = InitCmd(genOptions, logger, home, []string{"someone"})
	assert.True(t, errors.ErrDuplicate.Is(err))

	require.NoError(t, InitCmd(genOptions, logger, home, []string{"-i", "someone"}))
	bz, err = ioutil.ReadFile(genFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(bz, &doc))
	assert.JSONEq(t, `{"cash": [], "owner": "someone"}`, string(doc[appStateKey]))
}

func TestInitKeepsConfig(t *testing.T) {
	home, cleanup := tempHome(t)
	defer cleanup()
	writeGenesis(t, home)

	conf := DefaultConfig()
	conf.Debug = true
	require.NoError(t, WriteConfig(ConfigPath(home), conf))

	require.NoError(t, InitCmd(genOptions, log.NewNopLogger(), home, nil))
	got, err := LoadConfig(ConfigPath(home))
	require.NoError(t, err)
	assert.Equal(t, conf, got)
}

func TestInitWithoutGenesis(t *testing.T) {
	home, cleanup := tempHome(t)
	defer cleanup()

	err := InitCmd(genOptions, log.NewNopLogger(), home, nil)
	assert.True(t, errors.ErrNotFound.Is(err))
}
