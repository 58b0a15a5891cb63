package server

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/iov-one/jobchain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	abci "github.com/tendermint/tendermint/abci/types"
)

// tracker remembers the last committed block so the operations server can
// report it without calling into the application concurrently with
// tendermint.
type tracker struct {
	abci.Application

	mu      sync.RWMutex
	name    string
	height  int64
	hash    []byte
	pending int64
}

func newTracker(app abci.Application) *tracker {
	t := &tracker{Application: app}
	info := app.Info(abci.RequestInfo{})
	t.name = info.Data
	t.height = info.LastBlockHeight
	t.hash = info.LastBlockAppHash
	return t
}

func (t *tracker) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	t.mu.Lock()
	t.pending = req.Header.Height
	t.mu.Unlock()
	return t.Application.BeginBlock(req)
}

func (t *tracker) Commit() abci.ResponseCommit {
	res := t.Application.Commit()
	t.mu.Lock()
	t.height = t.pending
	t.hash = res.Data
	t.mu.Unlock()
	return res
}

// Status is returned by the /status endpoint.
type Status struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Height  int64  `json:"height"`
	AppHash string `json:"app_hash"`
}

func (t *tracker) status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Status{
		Name:    t.name,
		Version: jobchain.Version(),
		Height:  t.height,
		AppHash: hex.EncodeToString(t.hash),
	}
}

// opsRouter serves the operational endpoints of the daemon.
func opsRouter(t *tracker, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(t.status())
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
