// Package server exposes a studio over HTTP: JSON-RPC 2.0 on POST and
// WebSocket, plus a plain JSON reminder feed.
package server

import (
	"net/http"

	"github.com/hashicorp/go-multierror"

	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/internal/studio"
	"github.com/todostudio/todostudio/pkg/logger"
)

// Server routes authenticated requests to the RPC bridge, the RPC
// WebSocket endpoint and the event feed.
type Server struct {
	log  logger.Logger
	rpc  *RPCServer
	feed *EventFeed
	mux  *http.ServeMux
}

// NewServer creates a Server over st. Every endpoint requires cfg.Secret.
func NewServer(cfg *RPCConfig, st *studio.Studio, l logger.Logger) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	s := &Server{
		log:  l,
		rpc:  NewRPCServer(cfg, st, l),
		feed: NewEventFeed(l),
		mux:  http.NewServeMux(),
	}
	s.mux.Handle(common.RPCPath, requireToken(cfg.Secret, s.rpc.bridge))
	s.mux.Handle(common.RPCWSPath, requireToken(cfg.Secret, http.HandlerFunc(s.rpc.handleWS)))
	s.mux.Handle(EventsPath, requireToken(cfg.Secret, s.feed.handler()))
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return s
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Deliver forwards a delivered reminder to WebSocket clients. Register it
// with notify.Notifier.Observe.
func (s *Server) Deliver(d notify.Delivery) {
	s.rpc.notifier.Deliver(d)
	s.feed.Deliver(d)
}

// Sessions returns the number of connected RPC WebSocket sessions.
func (s *Server) Sessions() int {
	return s.rpc.notifier.Count()
}

// Close releases the RPC bridge and disconnects feed clients.
func (s *Server) Close() error {
	var result *multierror.Error
	if err := s.rpc.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.feed.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
