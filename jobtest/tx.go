package jobtest

import "github.com/iov-one/jobchain"

// Tx represents a transaction that carries a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg jobchain.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ jobchain.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (jobchain.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Unmarshal([]byte) error {
	panic("not implemented")
}

func (tx *Tx) Marshal() ([]byte, error) {
	panic("not implemented")
}

// Msg represents a message routed by its path.
type Msg struct {
	// RoutePath returned by the path method, consumed by the router.
	RoutePath string
	// Err if set is returned by the Validate method.
	Err error
}

var _ jobchain.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}
