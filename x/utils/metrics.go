package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/jobchain"
	"github.com/iov-one/jobchain/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that exposes transaction processing statistics as
// prometheus metrics. Every transaction is counted by its message path,
// the processing mode (check or deliver) and the ABCI code of the result.
type Metrics struct {
	txs      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ jobchain.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors with
// given registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		txs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobchain",
			Subsystem: "tx",
			Name:      "processed_total",
			Help:      "Total transactions processed, by message path, mode and result code.",
		}, []string{"path", "mode", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobchain",
			Subsystem: "tx",
			Name:      "duration_seconds",
			Help:      "Transaction processing time, by message path and mode.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"path", "mode"}),
	}
	for _, c := range []prometheus.Collector{m.txs, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrapf(errors.ErrHuman, "register metrics: %s", err)
		}
	}
	return m, nil
}

// Check records the outcome of the check
func (m *Metrics) Check(ctx jobchain.Context, store jobchain.KVStore, tx jobchain.Tx, next jobchain.Checker) (*jobchain.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	m.observe(jobchain.GetPath(tx), "check", start, err)
	return res, err
}

// Deliver records the outcome of the delivery
func (m *Metrics) Deliver(ctx jobchain.Context, store jobchain.KVStore, tx jobchain.Tx, next jobchain.Deliverer) (*jobchain.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	m.observe(jobchain.GetPath(tx), "deliver", start, err)
	return res, err
}

func (m *Metrics) observe(path, mode string, start time.Time, err error) {
	code, _ := errors.ABCIInfo(err, false)
	m.txs.WithLabelValues(path, mode, codeLabel(code)).Inc()
	m.duration.WithLabelValues(path, mode).Observe(time.Since(start).Seconds())
}

func codeLabel(code uint32) string {
	if code == 0 {
		return "ok"
	}
	return strconv.FormatUint(uint64(code), 10)
}
