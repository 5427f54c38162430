package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"github.com/rs/cors"
)

// HealthzServer reports the acceptance tester's liveness: the binary version
// and whether the acceptor is currently running test cycles.
type HealthzServer struct {
	ctx     context.Context
	server  *http.Server
	version string
	running atomic.Value // func() bool
}

// HealthzStatus is the /healthz response body.
type HealthzStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Running bool   `json:"running"`
}

func NewHealthzServer(version string) *HealthzServer {
	return &HealthzServer{version: version}
}

// SetRunningCheck registers the acceptor run-state probe. Before the
// acceptor exists /healthz reports running=false.
func (h *HealthzServer) SetRunningCheck(running func() bool) {
	h.running.Store(running)
}

func (h *HealthzServer) Start(ctx context.Context, addr string) error {
	hdlr := http.NewServeMux()
	hdlr.HandleFunc("/healthz", h.Handle)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	server := &http.Server{
		Handler: c.Handler(hdlr),
		Addr:    addr,
	}
	h.server = server
	h.ctx = ctx
	return h.server.ListenAndServe()
}

func (h *HealthzServer) Shutdown() error {
	return h.server.Shutdown(h.ctx)
}

func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	log.Debug("health check", "service", "mcp-acceptor", "path", r.URL.Path)

	status := HealthzStatus{
		Status:  "OK",
		Version: h.version,
	}
	if running, ok := h.running.Load().(func() bool); ok {
		status.Running = running()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error("error writing healthz response", "err", err)
	}
}
