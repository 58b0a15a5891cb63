package job

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/gconf"
)

// Configuration is the policy applied when jobs are created or cancelled.
type Configuration struct {
	Metadata *jobchain.Metadata `json:"metadata"`
	// Owner is allowed to update the configuration.
	Owner jobchain.Address `json:"owner"`
	// MinPay is the smallest pay a job can be created with.
	MinPay uint64 `json:"min_pay"`
	// UniqueParties rejects a new job if the same employer and worker
	// already share a job that is not finished.
	UniqueParties bool `json:"unique_parties"`
	// CancelTimeout is the number of seconds after which the employer
	// alone may cancel a job the worker did not approve. Zero disables
	// it.
	CancelTimeout int64 `json:"cancel_timeout"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() jobchain.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	if c.MinPay == 0 {
		errs = errors.AppendField(errs, "MinPay", errors.ErrAmount)
	}
	if err := validateCancelTimeout(c.CancelTimeout); err != nil {
		errs = errors.AppendField(errs, "CancelTimeout", err)
	}
	return errs
}

// maxCancelTimeout is a hundred years in seconds. It keeps every deadline
// far away from the int64 limit.
const maxCancelTimeout int64 = 100 * 365 * 24 * 60 * 60

func validateCancelTimeout(seconds int64) error {
	switch {
	case seconds < 0:
		return errors.Wrap(errors.ErrInput, "negative cancel timeout")
	case seconds > maxCancelTimeout:
		return errors.Wrapf(errors.ErrInput, "cancel timeout above %d seconds", maxCancelTimeout)
	}
	return nil
}

// cancelDeadline returns the time from which the employer alone may cancel
// a job created at created. The second value is false if employer
// cancellation is disabled or the timeout is out of range.
func (c *Configuration) cancelDeadline(created jobchain.UnixTime) (jobchain.UnixTime, bool) {
	if c.CancelTimeout <= 0 || c.CancelTimeout > maxCancelTimeout {
		return 0, false
	}
	return created + jobchain.UnixTime(c.CancelTimeout), true
}

// defaultConfiguration is used when the chain was started without a job
// configuration. It only requires a positive pay.
func defaultConfiguration() Configuration {
	return Configuration{
		Metadata: &jobchain.Metadata{Schema: 1},
		MinPay:   1,
	}
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, gconfPkg, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		conf = defaultConfiguration()
		return &conf, nil
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}
