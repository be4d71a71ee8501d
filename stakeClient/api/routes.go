package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes for the API server
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	gatherer := s.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/address", s.handleAddress).Methods(http.MethodGet)
	v1.HandleFunc("/balance", s.handleBalance).Methods(http.MethodGet)
	v1.HandleFunc("/staked", s.handleStaked).Methods(http.MethodGet)
	v1.HandleFunc("/rewards", s.handleRewards).Methods(http.MethodGet)
	v1.HandleFunc("/unbonds", s.handleUnbonds).Methods(http.MethodGet)
	v1.HandleFunc("/validators", s.handleValidators).Methods(http.MethodGet)
	v1.HandleFunc("/validators/best", s.handleBestValidator).Methods(http.MethodGet)
	v1.HandleFunc("/validators/{id}/staked", s.handleStakedToValidator).Methods(http.MethodGet)
	v1.HandleFunc("/rate", s.handleRate).Methods(http.MethodGet)
	v1.HandleFunc("/transactions", s.handleTransactions).Methods(http.MethodGet)
	v1.HandleFunc("/transactions/{hash}", s.handleTransaction).Methods(http.MethodGet)

	return r
}
