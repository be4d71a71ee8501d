package cosmoscore

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"cosmossdk.io/math"
	cmtservice "github.com/cosmos/cosmos-sdk/client/grpc/cmtservice"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	"github.com/cosmos/cosmos-sdk/types/tx"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	distrtypes "github.com/cosmos/cosmos-sdk/x/distribution/types"
	minttypes "github.com/cosmos/cosmos-sdk/x/mint/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	serrors "github.com/pushchain/push-stake-provider/stakeClient/errors"
)

const validatorsPageLimit = 200

// endpoint bundles the query clients bound to one gRPC connection.
type endpoint struct {
	auth    authtypes.QueryClient
	bank    banktypes.QueryClient
	staking stakingtypes.QueryClient
	distr   distrtypes.QueryClient
	mint    minttypes.QueryClient
	tx      tx.ServiceClient
	cmt     cmtservice.ServiceClient
}

func newEndpoint(conn *grpc.ClientConn) *endpoint {
	return &endpoint{
		auth:    authtypes.NewQueryClient(conn),
		bank:    banktypes.NewQueryClient(conn),
		staking: stakingtypes.NewQueryClient(conn),
		distr:   distrtypes.NewQueryClient(conn),
		mint:    minttypes.NewQueryClient(conn),
		tx:      tx.NewServiceClient(conn),
		cmt:     cmtservice.NewServiceClient(conn),
	}
}

// Client is a minimal fan-out client over multiple Cosmos gRPC endpoints.
// Reads try endpoints in round-robin order and return the first success;
// broadcasts go to a single endpoint.
type Client struct {
	logger zerolog.Logger
	eps    []*endpoint
	conns  []*grpc.ClientConn // owned connections for Close()
	rr     uint32             // round-robin counter
}

// New dials the provided gRPC URLs (best-effort) and builds a Client.
// Endpoints that fail to dial are skipped; at least one must succeed.
func New(urls []string, logger zerolog.Logger) (*Client, error) {
	if len(urls) == 0 {
		return nil, serrors.NewConfigError("cosmoscore.New", "at least one gRPC URL is required")
	}

	var conns []*grpc.ClientConn
	log := logger.With().Str("component", "cosmos_core").Logger()
	for i, u := range urls {
		conn, err := CreateGRPCConnection(u)
		if err != nil {
			log.Warn().Str("url", u).Int("index", i).Err(err).Msg("dial failed; skipping endpoint")
			continue
		}
		conns = append(conns, conn)
	}

	if len(conns) == 0 {
		return nil, serrors.NewRPCError("cosmoscore.New", fmt.Sprintf("all dials failed (%d urls)", len(urls)), nil)
	}
	return NewWithConns(conns, logger), nil
}

// NewWithConns builds a Client over already established connections.
// The Client takes ownership and closes them on Close.
func NewWithConns(conns []*grpc.ClientConn, logger zerolog.Logger) *Client {
	c := &Client{
		logger: logger.With().Str("component", "cosmos_core").Logger(),
		conns:  conns,
	}
	for _, conn := range conns {
		c.eps = append(c.eps, newEndpoint(conn))
	}
	return c
}

// Close closes all owned connections.
func (c *Client) Close() error {
	var firstErr error
	for _, conn := range c.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.conns = nil
	c.eps = nil
	return firstErr
}

// call runs fn against each endpoint once, starting from the next round-robin slot.
func call[T any](ctx context.Context, c *Client, op string, fn func(context.Context, *endpoint) (T, error)) (T, error) {
	var zero T
	if len(c.eps) == 0 {
		return zero, serrors.NewConfigError(op, "no endpoints configured")
	}

	start := int(atomic.AddUint32(&c.rr, 1)-1) % len(c.eps)

	var lastErr error
	for i := 0; i < len(c.eps); i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		idx := (start + i) % len(c.eps)

		out, err := fn(ctx, c.eps[idx])
		if err == nil {
			return out, nil
		}

		lastErr = err
		c.logger.Debug().
			Str("op", op).
			Int("attempt", i+1).
			Int("endpoint_index", idx).
			Err(err).
			Msg("call failed; trying next endpoint")
	}

	if status.Code(lastErr) == codes.NotFound {
		return zero, serrors.New(serrors.ErrCodeNotFound, op, "not found on any endpoint", lastErr)
	}
	return zero, serrors.NewRPCError(op, fmt.Sprintf("failed on all %d endpoints", len(c.eps)), lastErr)
}

// callOnce runs fn against the next round-robin endpoint only. Used for
// non-idempotent calls that must not be replayed on another endpoint.
func callOnce[T any](ctx context.Context, c *Client, op string, fn func(context.Context, *endpoint) (T, error)) (T, error) {
	var zero T
	if len(c.eps) == 0 {
		return zero, serrors.NewConfigError(op, "no endpoints configured")
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	idx := int(atomic.AddUint32(&c.rr, 1)-1) % len(c.eps)
	out, err := fn(ctx, c.eps[idx])
	if err != nil {
		c.logger.Debug().
			Str("op", op).
			Int("endpoint_index", idx).
			Err(err).
			Msg("call failed")
		return zero, err
	}
	return out, nil
}

// GetAccount returns account number and sequence for address.
func (c *Client) GetAccount(ctx context.Context, address string) (*Account, error) {
	return call(ctx, c, "GetAccount", func(ctx context.Context, ep *endpoint) (*Account, error) {
		resp, err := ep.auth.AccountInfo(ctx, &authtypes.QueryAccountInfoRequest{Address: address})
		if err != nil {
			return nil, err
		}
		if resp.Info == nil {
			return nil, status.Error(codes.NotFound, "empty account info")
		}
		return &Account{
			Address:       resp.Info.Address,
			AccountNumber: resp.Info.AccountNumber,
			Sequence:      resp.Info.Sequence,
		}, nil
	})
}

// GetBalances returns all balances held by address.
func (c *Client) GetBalances(ctx context.Context, address string) (sdk.Coins, error) {
	return call(ctx, c, "GetBalances", func(ctx context.Context, ep *endpoint) (sdk.Coins, error) {
		var (
			out sdk.Coins
			key []byte
		)
		for {
			resp, err := ep.bank.AllBalances(ctx, &banktypes.QueryAllBalancesRequest{
				Address:    address,
				Pagination: &query.PageRequest{Key: key},
			})
			if err != nil {
				return nil, err
			}
			out = append(out, resp.Balances...)
			if resp.Pagination == nil || len(resp.Pagination.NextKey) == 0 {
				return out, nil
			}
			key = resp.Pagination.NextKey
		}
	})
}

// ListDelegations returns every delegation of address.
func (c *Client) ListDelegations(ctx context.Context, address string) ([]Delegation, error) {
	return call(ctx, c, "ListDelegations", func(ctx context.Context, ep *endpoint) ([]Delegation, error) {
		var (
			out []Delegation
			key []byte
		)
		for {
			resp, err := ep.staking.DelegatorDelegations(ctx, &stakingtypes.QueryDelegatorDelegationsRequest{
				DelegatorAddr: address,
				Pagination:    &query.PageRequest{Key: key},
			})
			if err != nil {
				return nil, err
			}
			for _, d := range resp.DelegationResponses {
				out = append(out, Delegation{
					DelegatorAddress: d.Delegation.DelegatorAddress,
					ValidatorAddress: d.Delegation.ValidatorAddress,
					Shares:           d.Delegation.Shares,
					Balance:          d.Balance,
				})
			}
			if resp.Pagination == nil || len(resp.Pagination.NextKey) == 0 {
				return out, nil
			}
			key = resp.Pagination.NextKey
		}
	})
}

// ListUnbondings returns every pending unbonding entry of address.
func (c *Client) ListUnbondings(ctx context.Context, address string) ([]Unbonding, error) {
	return call(ctx, c, "ListUnbondings", func(ctx context.Context, ep *endpoint) ([]Unbonding, error) {
		resp, err := ep.staking.DelegatorUnbondingDelegations(ctx, &stakingtypes.QueryDelegatorUnbondingDelegationsRequest{
			DelegatorAddr: address,
		})
		if err != nil {
			return nil, err
		}
		var out []Unbonding
		for _, ubd := range resp.UnbondingResponses {
			for _, entry := range ubd.Entries {
				out = append(out, Unbonding{
					ValidatorAddress: ubd.ValidatorAddress,
					CreationHeight:   entry.CreationHeight,
					CompletionTime:   entry.CompletionTime,
					InitialBalance:   entry.InitialBalance,
					Balance:          entry.Balance,
				})
			}
		}
		return out, nil
	})
}

// GetRewards returns the total outstanding delegation rewards of address.
func (c *Client) GetRewards(ctx context.Context, address string) (sdk.DecCoins, error) {
	return call(ctx, c, "GetRewards", func(ctx context.Context, ep *endpoint) (sdk.DecCoins, error) {
		resp, err := ep.distr.DelegationTotalRewards(ctx, &distrtypes.QueryDelegationTotalRewardsRequest{
			DelegatorAddress: address,
		})
		if err != nil {
			return nil, err
		}
		return resp.Total, nil
	})
}

// GetTx returns the confirmed transaction for hash.
// A hash unknown to every endpoint yields a NOT_FOUND error.
func (c *Client) GetTx(ctx context.Context, hash string) (*Transaction, error) {
	return call(ctx, c, "GetTx", func(ctx context.Context, ep *endpoint) (*Transaction, error) {
		resp, err := ep.tx.GetTx(ctx, &tx.GetTxRequest{Hash: strings.ToUpper(hash)})
		if err != nil {
			return nil, err
		}
		if resp.TxResponse == nil {
			return nil, status.Error(codes.NotFound, "empty tx response")
		}
		r := resp.TxResponse
		return &Transaction{
			Hash:      r.TxHash,
			Height:    r.Height,
			Code:      r.Code,
			Codespace: r.Codespace,
			RawLog:    r.RawLog,
			GasWanted: r.GasWanted,
			GasUsed:   r.GasUsed,
			Timestamp: r.Timestamp,
		}, nil
	})
}

// BroadcastTx submits signed tx bytes in sync mode to a single endpoint.
// A non-zero check-tx code is returned as BROADCAST_FAILED together with the result.
func (c *Client) BroadcastTx(ctx context.Context, txBytes []byte) (*BroadcastResult, error) {
	res, err := callOnce(ctx, c, "BroadcastTx", func(ctx context.Context, ep *endpoint) (*BroadcastResult, error) {
		resp, err := ep.tx.BroadcastTx(ctx, &tx.BroadcastTxRequest{
			TxBytes: txBytes,
			Mode:    tx.BroadcastMode_BROADCAST_MODE_SYNC,
		})
		if err != nil {
			return nil, err
		}
		if resp.TxResponse == nil {
			return nil, fmt.Errorf("empty broadcast response")
		}
		return &BroadcastResult{
			TxHash:    resp.TxResponse.TxHash,
			Code:      resp.TxResponse.Code,
			Codespace: resp.TxResponse.Codespace,
			RawLog:    resp.TxResponse.RawLog,
		}, nil
	})
	if err != nil {
		return nil, serrors.NewBroadcastError("BroadcastTx", "broadcast failed", err)
	}
	if res.Code != 0 {
		return res, serrors.NewBroadcastError("BroadcastTx", fmt.Sprintf("check tx failed with code %d: %s", res.Code, res.RawLog), nil).
			WithContext("tx_hash", res.TxHash).
			WithContext("codespace", res.Codespace)
	}
	return res, nil
}

// GetChainID returns the network name reported by the node.
func (c *Client) GetChainID(ctx context.Context) (string, error) {
	return call(ctx, c, "GetChainID", func(ctx context.Context, ep *endpoint) (string, error) {
		resp, err := ep.cmt.GetNodeInfo(ctx, &cmtservice.GetNodeInfoRequest{})
		if err != nil {
			return "", err
		}
		if resp.DefaultNodeInfo == nil || resp.DefaultNodeInfo.Network == "" {
			return "", status.Error(codes.NotFound, "node info carries no network")
		}
		return resp.DefaultNodeInfo.Network, nil
	})
}

// GetValidators returns all bonded validators.
func (c *Client) GetValidators(ctx context.Context) ([]ChainValidator, error) {
	return call(ctx, c, "GetValidators", func(ctx context.Context, ep *endpoint) ([]ChainValidator, error) {
		var (
			out []ChainValidator
			key []byte
		)
		for {
			resp, err := ep.staking.Validators(ctx, &stakingtypes.QueryValidatorsRequest{
				Status:     stakingtypes.BondStatusBonded,
				Pagination: &query.PageRequest{Key: key, Limit: validatorsPageLimit},
			})
			if err != nil {
				return nil, err
			}
			for i := range resp.Validators {
				out = append(out, toChainValidator(&resp.Validators[i]))
			}
			if resp.Pagination == nil || len(resp.Pagination.NextKey) == 0 {
				return out, nil
			}
			key = resp.Pagination.NextKey
		}
	})
}

// GetValidator returns a single validator by operator address.
func (c *Client) GetValidator(ctx context.Context, operator string) (*ChainValidator, error) {
	return call(ctx, c, "GetValidator", func(ctx context.Context, ep *endpoint) (*ChainValidator, error) {
		resp, err := ep.staking.Validator(ctx, &stakingtypes.QueryValidatorRequest{ValidatorAddr: operator})
		if err != nil {
			return nil, err
		}
		v := toChainValidator(&resp.Validator)
		return &v, nil
	})
}

// GetStakingPool returns bonded/not-bonded token totals.
func (c *Client) GetStakingPool(ctx context.Context) (*StakingPool, error) {
	return call(ctx, c, "GetStakingPool", func(ctx context.Context, ep *endpoint) (*StakingPool, error) {
		resp, err := ep.staking.Pool(ctx, &stakingtypes.QueryPoolRequest{})
		if err != nil {
			return nil, err
		}
		return &StakingPool{
			BondedTokens:    resp.Pool.BondedTokens,
			NotBondedTokens: resp.Pool.NotBondedTokens,
		}, nil
	})
}

// GetSupply returns the total supply of denom.
func (c *Client) GetSupply(ctx context.Context, denom string) (math.Int, error) {
	return call(ctx, c, "GetSupply", func(ctx context.Context, ep *endpoint) (math.Int, error) {
		resp, err := ep.bank.SupplyOf(ctx, &banktypes.QuerySupplyOfRequest{Denom: denom})
		if err != nil {
			return math.Int{}, err
		}
		return resp.Amount.Amount, nil
	})
}

// GetUnbondingTime returns the staking module unbonding period.
func (c *Client) GetUnbondingTime(ctx context.Context) (time.Duration, error) {
	return call(ctx, c, "GetUnbondingTime", func(ctx context.Context, ep *endpoint) (time.Duration, error) {
		resp, err := ep.staking.Params(ctx, &stakingtypes.QueryParamsRequest{})
		if err != nil {
			return 0, err
		}
		return resp.Params.UnbondingTime, nil
	})
}

// GetInflation returns the current annual inflation rate.
func (c *Client) GetInflation(ctx context.Context) (math.LegacyDec, error) {
	return call(ctx, c, "GetInflation", func(ctx context.Context, ep *endpoint) (math.LegacyDec, error) {
		resp, err := ep.mint.Inflation(ctx, &minttypes.QueryInflationRequest{})
		if err != nil {
			return math.LegacyDec{}, err
		}
		return resp.Inflation, nil
	})
}

// GetCommunityTax returns the distribution module community tax.
func (c *Client) GetCommunityTax(ctx context.Context) (math.LegacyDec, error) {
	return call(ctx, c, "GetCommunityTax", func(ctx context.Context, ep *endpoint) (math.LegacyDec, error) {
		resp, err := ep.distr.Params(ctx, &distrtypes.QueryParamsRequest{})
		if err != nil {
			return math.LegacyDec{}, err
		}
		return resp.Params.CommunityTax, nil
	})
}

func toChainValidator(v *stakingtypes.Validator) ChainValidator {
	return ChainValidator{
		OperatorAddress: v.OperatorAddress,
		Moniker:         v.Description.Moniker,
		Website:         v.Description.Website,
		Details:         v.Description.Details,
		Jailed:          v.Jailed,
		Bonded:          v.Status == stakingtypes.Bonded,
		Tokens:          v.Tokens,
		Commission:      v.Commission.CommissionRates.Rate,
	}
}

// ServerCodecOption returns the server option matching the client codec.
func ServerCodecOption() grpc.ServerOption {
	return grpc.ForceServerCodec(codec.NewProtoCodec(codectypes.NewInterfaceRegistry()).GRPCCodec())
}

// CreateGRPCConnection creates a gRPC connection with appropriate transport security.
// https:// endpoints use TLS, http:// or scheme-less endpoints are insecure.
// A missing port defaults to 9090.
func CreateGRPCConnection(endpoint string, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("empty endpoint provided")
	}

	processedEndpoint := endpoint
	useTLS := false

	if strings.HasPrefix(endpoint, "https://") {
		processedEndpoint = strings.TrimPrefix(endpoint, "https://")
		useTLS = true
	} else if strings.HasPrefix(endpoint, "http://") {
		processedEndpoint = strings.TrimPrefix(endpoint, "http://")
	}
	processedEndpoint = withDefaultPort(processedEndpoint)

	var opts []grpc.DialOption
	if useTLS {
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(nil)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	cdc := codec.NewProtoCodec(codectypes.NewInterfaceRegistry())
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.ForceCodec(cdc.GRPCCodec())))
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(processedEndpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection to %s: %w", processedEndpoint, err)
	}
	return conn, nil
}

func withDefaultPort(hostport string) string {
	if !strings.Contains(hostport, ":") {
		return hostport + ":9090"
	}
	lastColon := strings.LastIndex(hostport, ":")
	afterColon := hostport[lastColon+1:]
	if afterColon == "" || strings.Contains(afterColon, "/") {
		return strings.TrimSuffix(hostport, ":") + ":9090"
	}
	return hostport
}
