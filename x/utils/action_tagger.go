package utils

import (
	"github.com/iov-one/jobchain"
	"github.com/tendermint/tendermint/libs/common"
)

// ActionKey is the tag holding the message path of a delivered
// transaction, for example action=job/create. Clients subscribe to it.
const ActionKey = "action"

// ActionTagger adds the ActionKey tag to successful deliveries. It goes last
// in the chain, right before the router.
type ActionTagger struct{}

var _ jobchain.Decorator = ActionTagger{}

func NewActionTagger() ActionTagger {
	return ActionTagger{}
}

func (ActionTagger) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Checker) (*jobchain.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

func (ActionTagger) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx, next jobchain.Deliverer) (*jobchain.DeliverResult, error) {
	// a transaction without a message never reaches the handler
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	res.Tags = append(res.Tags, common.KVPair{Key: []byte(ActionKey), Value: []byte(msg.Path())})
	return res, nil
}
