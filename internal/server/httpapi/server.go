// Package httpapi exposes the transfer and query services over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cloudbank/internal/logging"
	"github.com/dmitrijs2005/cloudbank/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Transferer interface {
	Transfer(ctx context.Context, caller string, req models.TransferRequest) (string, error)
}

type Querier interface {
	GetTransaction(ctx context.Context, caller, transID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, caller, username string) ([]*models.Transaction, error)
}

type Server struct {
	address   string
	logger    logging.Logger
	transfers Transferer
	queries   Querier
	jwtSecret []byte
}

func NewServer(address string, logger logging.Logger, ts Transferer, qs Querier, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    logger.With("module", "http_server"),
		transfers: ts,
		queries:   qs,
		jwtSecret: []byte(secretKey),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Post("/transactions", s.createTransaction)
		r.Get("/transaction/{trans_id}", s.getTransaction)
		r.Get("/transactions/{username}", s.listTransactions)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
