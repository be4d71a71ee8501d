package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Options are the data sources of the query server. Journal, Balance, Staked
// and Gatherer are optional.
type Options struct {
	Provider CoinProvider
	Journal  TxJournal
	Balance  AmountSource
	Staked   AmountSource
	Gatherer prometheus.Gatherer
}

// Server provides HTTP endpoints
type Server struct {
	logger   zerolog.Logger
	server   *http.Server
	provider CoinProvider
	journal  TxJournal
	balance  AmountSource
	staked   AmountSource
	gatherer prometheus.Gatherer
	now      func() time.Time
}

// NewServer creates a new Server instance
func NewServer(logger zerolog.Logger, port int, opts Options) *Server {
	s := &Server{
		logger:   logger.With().Str("component", "query_server").Logger(),
		provider: opts.Provider,
		journal:  opts.Journal,
		balance:  opts.Balance,
		staked:   opts.Staked,
		gatherer: opts.Gatherer,
		now:      time.Now,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("query server is nil")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
	}

	go func() {
		err := s.server.Serve(ln)
		switch err {
		case nil:
			s.logger.Info().Msg("Query server stopped normally")
		case http.ErrServerClosed:
			s.logger.Info().Msg("Query server closed gracefully")
		default:
			s.logger.Error().Err(err).Msg("Query server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Query server listening")
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
