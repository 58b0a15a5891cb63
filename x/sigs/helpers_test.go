package sigs

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/jobtest"
)

// StdTx is a signed transaction carrying a raw payload. Its sign bytes
// are the payload.
type StdTx struct {
	jobtest.Tx
	Payload    []byte
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)
var _ jobchain.Tx = (*StdTx)(nil)

func NewStdTx(payload []byte) *StdTx {
	return &StdTx{
		Tx:      jobtest.Tx{Msg: &jobtest.Msg{RoutePath: "test/payload"}},
		Payload: payload,
	}
}

func (tx *StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	return tx.Payload, nil
}

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []jobchain.Condition
}

var _ jobchain.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx jobchain.Context, store jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &jobchain.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx jobchain.Context, store jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &jobchain.DeliverResult{}, nil
}
