package jobtest

import "github.com/iov-one/jobchain"

// Handler is a mock implementation of the jobchain.Handler interface.
//
// Each method call is counted. Configured results and errors are returned.
type Handler struct {
	checkCall   int
	CheckResult jobchain.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult jobchain.DeliverResult
	DeliverErr    error
}

var _ jobchain.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// WriteHandler is a handler that writes a single key value pair to the
// store before returning configured error. Use it to test that a decorator
// discards or keeps the handler changes.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ jobchain.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &jobchain.CheckResult{}, h.Err
}

func (h *WriteHandler) Deliver(ctx jobchain.Context, db jobchain.KVStore, tx jobchain.Tx) (*jobchain.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &jobchain.DeliverResult{}, h.Err
}
