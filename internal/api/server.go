// Package api serves the training analytics as a small JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP API server.
type Server struct {
	handler    *Handler
	httpServer *http.Server
}

// NewServer builds a server for addr (host:port) over svc.
func NewServer(addr string, svc analyticsService) *Server {
	s := &Server{handler: NewHandler(svc)}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}
	return s
}

// Router returns the API routes with their middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(panicRecovery(), logRequest())
	s.handler.Register(r)
	return r
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		log.Infof(" > api listening on: [%s]", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("api: graceful shutdown: %s", err)
		return err
	}
	<-errChan
	log.Info("api: server shut down")
	return nil
}
