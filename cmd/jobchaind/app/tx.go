package app

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/x/cash"
	"github.com/iov-one/jobchain/x/job"
	"github.com/iov-one/jobchain/x/sigs"
	amino "github.com/tendermint/go-amino"
)

// Tx carries a single message together with the signatures of everyone
// authorizing it.
type Tx struct {
	Msg        jobchain.Msg         `json:"msg"`
	Signatures []*sigs.StdSignature `json:"signatures"`
}

var cdc = newCodec()

// newCodec registers every message the router can dispatch.
func newCodec() *amino.Codec {
	c := amino.NewCodec()
	c.RegisterInterface((*jobchain.Msg)(nil), nil)
	c.RegisterConcrete(&cash.SendMsg{}, "jobchain/cash/send", nil)
	c.RegisterConcrete(&sigs.BumpSequenceMsg{}, "jobchain/sigs/bump_sequence", nil)
	c.RegisterConcrete(&job.CreateJobMsg{}, "jobchain/job/create", nil)
	c.RegisterConcrete(&job.ApproveJobWorkerMsg{}, "jobchain/job/approve_worker", nil)
	c.RegisterConcrete(&job.ApproveJobEmployerMsg{}, "jobchain/job/approve_employer", nil)
	c.RegisterConcrete(&job.CancelJobMsg{}, "jobchain/job/cancel", nil)
	c.RegisterConcrete(&job.UpdateConfigurationMsg{}, "jobchain/job/update_conf", nil)
	return c
}

var (
	_ jobchain.Tx        = (*Tx)(nil)
	_ sigs.SignedTx      = (*Tx)(nil)
	_ jobchain.TxDecoder = TxDecoder
)

// TxDecoder reads a Tx from its amino encoding.
func TxDecoder(raw []byte) (jobchain.Tx, error) {
	var tx Tx
	if err := tx.Unmarshal(raw); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (tx *Tx) GetMsg() (jobchain.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrState, "transaction without a message")
	}
	return tx.Msg, nil
}

func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes is the encoding of the transaction without any signature,
// so every signer signs the same payload.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	unsigned := Tx{Msg: tx.Msg}
	return unsigned.Marshal()
}

func (tx *Tx) Marshal() ([]byte, error) {
	raw, err := cdc.MarshalBinaryBare(tx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

func (tx *Tx) Unmarshal(raw []byte) error {
	if err := cdc.UnmarshalBinaryBare(raw, tx); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}
