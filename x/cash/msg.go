package cash

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
)

const (
	pathSendMsg = "cash/send"

	sendTxCost int64 = 100

	maxMemoSize int = 128
)

// SendMsg transfers value between two wallets.
type SendMsg struct {
	Metadata    *jobchain.Metadata `json:"metadata"`
	Source      jobchain.Address   `json:"source"`
	Destination jobchain.Address   `json:"destination"`
	Amount      uint64             `json:"amount"`
	Memo        string             `json:"memo"`
}

var _ jobchain.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return pathSendMsg
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrState)
	}
	return errs
}
