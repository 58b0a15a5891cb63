package jobchain

import (
	"encoding/json"
	"time"

	"github.com/iov-one/jobchain/errors"
)

// UnixTime is a moment in seconds since the epoch. Persisted models use it
// instead of time.Time so that their encoding is stable.
type UnixTime int64

// AsUnixTime drops the sub second part of t.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add works like time.Time.Add, truncated to seconds.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrapf(errors.ErrState, "time %d before epoch", int64(t))
	}
	return nil
}

func (t UnixTime) String() string {
	return t.Time().UTC().Format(time.RFC3339)
}

// UnmarshalJSON accepts a number of seconds or an RFC 3339 string, which
// is easier to write in a genesis file.
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var secs int64
	if err := json.Unmarshal(raw, &secs); err != nil {
		var when time.Time
		if err := json.Unmarshal(raw, &when); err != nil {
			return errors.Wrapf(errors.ErrInput, "time %s", raw)
		}
		secs = when.Unix()
	}
	if secs < 0 {
		return errors.Wrapf(errors.ErrInput, "time %s before epoch", raw)
	}
	*t = UnixTime(secs)
	return nil
}
