package server

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/store"
)

// ValidateGenesis loads the app_state of each file into a throwaway memory
// store. It stops at the first file the initializer rejects.
func ValidateGenesis(ini jobchain.Initializer, paths []string) error {
	if len(paths) == 0 {
		return errors.Wrap(errors.ErrInput, "usage: validate <genesis.json>...")
	}
	for _, path := range paths {
		state, err := readAppState(path)
		if err == nil {
			err = ini.FromGenesis(state, store.MemStore())
		}
		if err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func readAppState(path string) (jobchain.Options, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	var state jobchain.Options
	if s, ok := doc[appStateKey]; ok && string(s) != "null" {
		if err := json.Unmarshal(s, &state); err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "%s: %s", appStateKey, err)
		}
	}
	if len(state) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, appStateKey)
	}
	return state, nil
}
