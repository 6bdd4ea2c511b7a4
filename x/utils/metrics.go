package utils

import (
	"strconv"
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that counts processed transactions and
// measures how long their handlers took. Only DeliverTx is measured.
//
// Every instance owns a private registry, so several applications can
// live in one process (tests) without colliding on metric names.
type Metrics struct {
	registry  *prometheus.Registry
	txs       *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var _ custody.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator with all collectors
// registered.
func NewMetrics() *Metrics {
	txs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "custody",
		Name:      "tx_total",
		Help:      "Total transactions delivered, by message path and result code.",
	}, []string{"path", "result"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "custody",
		Name:      "tx_duration_seconds",
		Help:      "Duration of transaction delivery in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(txs, durations)
	return &Metrics{
		registry:  registry,
		txs:       txs,
		durations: durations,
	}
}

// Registry returns the registry to be exposed, for example with
// promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Check just passes the request along
func (m *Metrics) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Checker) (*custody.CheckResult, error) {
	return next.Check(ctx, db, tx)
}

// Deliver records the outcome and the duration of every call.
func (m *Metrics) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx, next custody.Deliverer) (*custody.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)

	path := custody.GetPath(tx)
	m.durations.WithLabelValues(path).Observe(time.Since(start).Seconds())
	m.txs.WithLabelValues(path, resultLabel(err)).Inc()
	return res, err
}

// resultLabel returns "ok" or the ABCI code of the failure.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	code, _ := errors.ABCIInfo(err, false)
	return strconv.FormatUint(uint64(code), 10)
}
