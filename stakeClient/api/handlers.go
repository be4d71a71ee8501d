package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	requestTimeout   = 30 * time.Second
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleAddress handles GET /api/v1/address
func (s *Server) handleAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	addr, err := s.provider.Address(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]string{"address": addr}, s.now())
}

// handleBalance handles GET /api/v1/balance
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	s.serveAmount(w, r, s.balance, s.provider.Balance)
}

// handleStaked handles GET /api/v1/staked
func (s *Server) handleStaked(w http.ResponseWriter, r *http.Request) {
	s.serveAmount(w, r, s.staked, s.provider.StakedAmount)
}

// serveAmount prefers the refreshed value and falls back to a live query
// until the first refresh has completed.
func (s *Server) serveAmount(w http.ResponseWriter, r *http.Request, cached AmountSource, live func(context.Context) (math.Int, error)) {
	if cached != nil {
		if v, at, ok := cached.Get(); ok {
			s.writeData(w, AmountResponse{Amount: v.String()}, at)
			return
		}
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	v, err := live(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, AmountResponse{Amount: v.String()}, s.now())
}

// handleRewards handles GET /api/v1/rewards
func (s *Server) handleRewards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	rewards, err := s.provider.StakingRewards(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, AmountResponse{Amount: rewards.String()}, s.now())
}

// handleUnbonds handles GET /api/v1/unbonds
func (s *Server) handleUnbonds(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	unbonds, err := s.provider.PendingUnbonds(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, unbonds, s.now())
}

// handleValidators handles GET /api/v1/validators
func (s *Server) handleValidators(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	vals, err := s.provider.Validators(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, vals, s.now())
}

// handleBestValidator handles GET /api/v1/validators/best
func (s *Server) handleBestValidator(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	best, err := s.provider.BestValidator(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, best, s.now())
}

// handleStakedToValidator handles GET /api/v1/validators/{id}/staked
func (s *Server) handleStakedToValidator(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	id := mux.Vars(r)["id"]
	amount, err := s.provider.GetStakedToValidator(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, ValidatorStakeResponse{ValidatorID: id, Amount: amount.String()}, s.now())
}

// handleRate handles GET /api/v1/rate
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	rate, err := s.provider.Rate(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]string{"rate": rate.String()}, s.now())
}

// handleTransactions handles GET /api/v1/transactions?status=<status>&limit=<n>
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "transaction journal is disabled"})
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxListLimit)
	}

	var (
		txs []store.StakeTransaction
		err error
	)
	switch status := strings.ToLower(r.URL.Query().Get("status")); status {
	case "":
		txs, err = s.journal.List(limit)
	case store.StatusPending, store.StatusConfirmed, store.StatusFailed:
		txs, err = s.journal.ListByStatus(status, limit)
	default:
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown status " + status})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, txs, s.now())
}

// handleTransaction handles GET /api/v1/transactions/{hash}
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "transaction journal is disabled"})
		return
	}

	hash := mux.Vars(r)["hash"]
	tx, err := s.journal.Get(hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "transaction " + hash + " not found", Code: string(errors.ErrCodeNotFound)})
			return
		}
		s.writeError(w, err)
		return
	}
	s.writeData(w, tx, s.now())
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func (s *Server) writeData(w http.ResponseWriter, data interface{}, fetched time.Time) {
	s.writeJSON(w, http.StatusOK, QueryResponse{Data: data, LastFetched: fetched})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn().Err(err).Int("status", status).Msg("query failed")
	}
	s.writeJSON(w, status, ErrorResponse{
		Error:     err.Error(),
		Code:      string(errors.CodeOf(err)),
		Retryable: errors.IsRetryable(err),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write response")
	}
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeRPC, errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeConfirmationTimeout:
		return http.StatusGatewayTimeout
	default:
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}
}
