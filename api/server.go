package api

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rollcall/server/config"
	"github.com/rollcall/server/logging"
	"github.com/rollcall/server/services/codeengine"
)

// Server provides an HTTP server for the API.
type Server struct {
	*http.Server
	codeEngine *codeengine.Engine
}

// NewServer builds the router and wraps it in an http.Server bound to the
// configured host and port.
func NewServer(cfg *config.Config) (*Server, error) {
	logging.Logger.Info("Initializing API server...")

	router, engine, err := build(cfg)
	if err != nil {
		return nil, err
	}

	var addr string
	if strings.Contains(cfg.ServerPort, ":") {
		addr = cfg.ServerPort
	} else {
		addr = cfg.ServerHost + ":" + cfg.ServerPort
	}

	srv := &Server{
		Server: &http.Server{
			Addr:    addr,
			Handler: router,
			// ReadTimeout stays modest to protect against slowloris attacks,
			// but WriteTimeout must be disabled to allow long-lived
			// WebSocket presence subscriptions.
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  0,
		},
		codeEngine: engine,
	}

	return srv, nil
}

// Start runs the server until an interrupt signal arrives, then shuts down
// gracefully.
func (srv *Server) Start() {
	go func() {
		logging.Logger.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	sig := <-quit
	logging.Logger.Infof("Server shutting down due to %s signal", sig)

	srv.codeEngine.StopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logging.Logger.Info("Server gracefully stopped")
}
