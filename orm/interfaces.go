package orm

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/x"
)

// Object is a model together with its primary key. The bucket prefixes the
// key before writing.
type Object interface {
	Key() []byte
	SetKey([]byte)
	Cloneable
	x.Validater
	Value() jobchain.Persistent
}

type Cloneable interface {
	Clone() Object
}

// CloneableData is a value that knows how to validate and copy itself.
// Wallets, jobs and custody records all implement it.
type CloneableData interface {
	x.Validater
	jobchain.Persistent
	Copy() CloneableData
}

// Model is the name used by ModelBucket for the same contract.
type Model = CloneableData
