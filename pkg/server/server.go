// Package server wraps the HTTP listener lifecycle behind the
// Configuration-functional-options shape the ancestor uses, generalized to
// drop the gRPC arm (the gateway exposes REST only; see the dropped
// google.golang.org/grpc entry in DESIGN.md).
package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Server struct {
	http *http.Server
}

// Configuration is an alias for a function that will take in a pointer to a Server and modify it
type Configuration func(r *Server) error

// New takes a variable amount of Configuration functions and returns a new Server
// Each Configuration will be called in the order they are passed in
func New(configs ...Configuration) (r *Server, err error) {
	// Create the Server
	r = &Server{}

	// Apply all Configurations passed in
	for _, cfg := range configs {
		// Pass the service into the configuration function
		if err = cfg(r); err != nil {
			return
		}
	}
	return
}

func (s *Server) Run(logger *zap.Logger) (err error) {
	if s.http != nil {
		go func() {
			if serveErr := s.http.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
				logger.Error("ERR_SERVE_HTTP", zap.Error(serveErr))
			}
		}()
	}

	return
}

func (s *Server) Stop(ctx context.Context) (err error) {
	if s.http != nil {
		return s.http.Shutdown(ctx)
	}
	return
}

func WithHTTPServer(handler http.Handler, port string, readTimeout, writeTimeout, idleTimeout time.Duration) Configuration {
	return func(s *Server) (err error) {
		s.http = &http.Server{
			Handler:      handler,
			Addr:         ":" + port,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		}
		return
	}
}
