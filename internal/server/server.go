package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stockledger/internal/config"
)

const (
	defaultRequestTimeout = 30 * time.Second
	readHeaderTimeout     = 5 * time.Second
	// a handler cut off by the request timeout still needs time to write
	// its error response
	writeGrace = 5 * time.Second
)

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New sizes the connection timeouts from the request timeout so the write
// deadline never fires before a handler that is still inside its budget.
func New(cfg config.ServerConfig, handler http.Handler, logger *zap.Logger) *Server {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       requestTimeout,
			WriteTimeout:      requestTimeout + writeGrace,
			IdleTimeout:       2 * requestTimeout,
		},
		logger: logger,
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting server",
		zap.String("addr", ln.Addr().String()),
		zap.Duration("writeTimeout", s.httpServer.WriteTimeout))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}
