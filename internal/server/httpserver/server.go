package httpserver

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"
)

// Options configures the HTTP server.
type Options struct {
	Addr         string
	Handler      http.Handler
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// TLSConfig enables HTTPS. Certificates come from its GetCertificate.
	TLSConfig *tls.Config
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
}

// New creates a new HTTP server.
func New(opts Options) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           opts.Handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       2 * time.Minute,
			MaxHeaderBytes:    1 << 16,
			TLSConfig:         opts.TLSConfig,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// TLS reports whether the server terminates TLS.
func (s *Server) TLS() bool {
	return s.httpServer.TLSConfig != nil
}

// ListenAndServe starts the server. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	if s.TLS() {
		return ignoreClosed(s.httpServer.ListenAndServeTLS("", ""))
	}
	return ignoreClosed(s.httpServer.ListenAndServe())
}

// Serve accepts connections on ln. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if s.TLS() {
		return ignoreClosed(s.httpServer.ServeTLS(ln, "", ""))
	}
	return ignoreClosed(s.httpServer.Serve(ln))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
