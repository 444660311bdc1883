package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"debitgate/internal/service"
)

type Server struct {
	srv *http.Server
}

func NewServer(addr string, svc service.ChargeService, log *zap.Logger) *Server {
	mux := http.NewServeMux()
	h := NewHandler(svc, log)
	h.Register(mux)

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	return s.srv.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
