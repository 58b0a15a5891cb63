package utils

import (
	"context"
	"testing"

	"github.com/iov-one/jobchain/errors"
	"github.com/iov-one/jobchain/jobtest"
	"github.com/iov-one/jobchain/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	db := store.MemStore()
	tx := &jobtest.Tx{Msg: &jobtest.Msg{RoutePath: "job/create"}}

	ok := jobtest.Decorate(&jobtest.Handler{}, m)
	_, err = ok.Deliver(ctx, db, tx)
	require.NoError(t, err)
	_, err = ok.Check(ctx, db, tx)
	require.NoError(t, err)

	failing := jobtest.Decorate(&jobtest.Handler{DeliverErr: errors.ErrDuplicate}, m)
	_, err = failing.Deliver(ctx, db, tx)
	require.True(t, errors.ErrDuplicate.Is(err))

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	var observed uint64
	for _, f := range families {
		switch f.GetName() {
		case "jobchain_tx_processed_total":
			for _, metric := range f.GetMetric() {
				var key string
				for _, l := range metric.GetLabel() {
					key += l.GetName() + "=" + l.GetValue() + ","
				}
				counts[key] = metric.GetCounter().GetValue()
			}
		case "jobchain_tx_duration_seconds":
			for _, metric := range f.GetMetric() {
				observed += metric.GetHistogram().GetSampleCount()
			}
		}
	}

	require.Equal(t, float64(1), counts["code=ok,mode=deliver,path=job/create,"])
	require.Equal(t, float64(1), counts["code=ok,mode=check,path=job/create,"])
	require.Equal(t, float64(1), counts["code=6,mode=deliver,path=job/create,"])
	require.Equal(t, uint64(3), observed)
}
