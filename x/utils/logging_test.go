package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/jobtest"
	"github.com/iov-one/jobchain/store"
	"github.com/tendermint/tendermint/libs/log"
)

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewTMLogger(log.NewSyncWriter(&buf))

	ctx := jobchain.WithLogger(context.Background(), logger)
	db := store.MemStore()
	tx := &jobtest.Tx{Msg: &jobtest.Msg{RoutePath: "job/approve_worker"}}

	ok := jobtest.Decorate(&jobtest.Handler{DeliverResult: jobchain.DeliverResult{Log: "approved"}}, NewLogging())
	if _, err := ok.Deliver(ctx, db, tx); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	out := buf.String()
	if !strings.Contains(out, "approved") || !strings.Contains(out, "path=job/approve_worker") {
		t.Fatalf("unexpected log output: %q", out)
	}

	buf.Reset()
	failing := jobtest.Decorate(&jobtest.Handler{DeliverErr: errors.ErrUnauthorized}, NewLogging())
	if _, err := failing.Deliver(ctx, db, tx); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "unauthorized") {
		t.Fatalf("error not logged: %q", out)
	}
}
