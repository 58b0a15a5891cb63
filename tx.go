package jobchain

import (
	"reflect"

	"github.com/iov-one/jobchain/errors"
)

// Msg is a single requested state change, for example creating a job.
type Msg interface {
	// Path routes the message to its handler. It matches
	// [0-9A-Za-z_\-/]+ and several message types may share one.
	Path() string
	// Validate checks the message on its own, without reading state.
	Validate() error
}

type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent is implemented by everything written to the store or sent
// over the wire. Unmarshal needs a pointer receiver, Marshal does not.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Tx is a decoded transaction: one message plus whatever the decorators
// need to authorize it, such as signatures. The application defines the
// concrete type.
type Tx interface {
	Persistent
	GetMsg() (Msg, error)
}

// TxDecoder parses the raw bytes of a transaction.
type TxDecoder func(txBytes []byte) (Tx, error)

// GetPath returns the path of the message of tx, or "(missing)".
func GetPath(tx Tx) string {
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg copies the message of tx into dest and validates it. dest must
// point to the concrete message type or to a pointer of it.
func LoadMsg(tx Tx, dest interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if err := assignMsg(msg, dest); err != nil {
		return err
	}
	return errors.Wrap(msg.Validate(), "invalid message")
}

func assignMsg(msg Msg, dest interface{}) error {
	ptr := reflect.ValueOf(dest)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return errors.Wrapf(errors.ErrType, "destination %T is not a pointer", dest)
	}
	target := ptr.Elem()
	src := reflect.ValueOf(msg)
	if src.Kind() == reflect.Ptr && !src.Type().AssignableTo(target.Type()) {
		src = src.Elem()
	}
	if !src.Type().AssignableTo(target.Type()) {
		return errors.Wrapf(errors.ErrType, "want %s message, got %T", target.Type(), msg)
	}
	target.Set(src)
	return nil
}
