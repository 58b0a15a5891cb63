package cash

import (
	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/x"
)

// RegisterRoutes adds the send handler under cash/send.
func RegisterRoutes(r jobchain.Registry, auth x.Authenticator, control Controller) {
	r.Handle(pathSendMsg, NewSendHandler(auth, control))
}

// RegisterQuery exposes wallets under /wallets, keyed by address.
func RegisterQuery(qr jobchain.QueryRouter) {
	NewBucket().Register("wallets", qr)
}

// SendHandler moves value from a wallet signed for by its owner.
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ jobchain.Handler = SendHandler{}

func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{auth: auth, control: control}
}

// Check does not look at balances. An overdraft is only detected when the
// transaction is delivered.
func (h SendHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if _, err := h.authorized(ctx, tx); err != nil {
		return nil, err
	}
	return &jobchain.CheckResult{GasAllocated: sendTxCost}, nil
}

func (h SendHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	msg, err := h.authorized(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.MoveCoins(db, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, errors.Wrapf(err, "send %d from %s", msg.Amount, msg.Source)
	}
	return &jobchain.DeliverResult{}, nil
}

func (h SendHandler) authorized(ctx jobchain.Context, tx jobchain.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := jobchain.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "source %s did not sign", msg.Source)
	}
	return &msg, nil
}
