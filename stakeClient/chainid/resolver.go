// Package chainid resolves the chain identifier a transaction must be signed for.
package chainid

import (
	"context"
	"net/http"

	"github.com/pushchain/push-stake-provider/stakeClient/errors"
	"github.com/pushchain/push-stake-provider/stakeClient/httpclient"
)

const nodeInfoPath = "/cosmos/base/tendermint/v1beta1/node_info"

// Resolver returns the chain id of the configured network.
type Resolver interface {
	ChainID(ctx context.Context) (string, error)
}

type nodeInfoResponse struct {
	DefaultNodeInfo struct {
		Network string `json:"network"`
	} `json:"default_node_info"`
}

// Resolve queries the LCD node_info endpoint and returns its network name.
func Resolve(ctx context.Context, httpClient *http.Client, endpoint string) (string, error) {
	if endpoint == "" {
		return "", errors.NewConfigError("chainid.Resolve", "endpoint is empty")
	}
	c := httpclient.New(httpclient.Opts{BaseURL: endpoint, HTTPClient: httpClient})

	var out nodeInfoResponse
	if err := c.GetJSON(ctx, "chainid.Resolve", nodeInfoPath, nil, &out); err != nil {
		return "", err
	}
	if out.DefaultNodeInfo.Network == "" {
		return "", errors.NewNotFoundError("chainid.Resolve", "node info carries no network")
	}
	return out.DefaultNodeInfo.Network, nil
}

// HTTPResolver resolves the chain id over an LCD endpoint on every call.
type HTTPResolver struct {
	Client   *http.Client
	Endpoint string
}

// ChainID implements Resolver.
func (r HTTPResolver) ChainID(ctx context.Context) (string, error) {
	return Resolve(ctx, r.Client, r.Endpoint)
}

// StaticResolver returns a fixed chain id.
type StaticResolver string

// ChainID implements Resolver.
func (r StaticResolver) ChainID(context.Context) (string, error) {
	if r == "" {
		return "", errors.NewNotFoundError("chainid.Static", "chain id is not configured")
	}
	return string(r), nil
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (string, error)

// ChainID implements Resolver.
func (f ResolverFunc) ChainID(ctx context.Context) (string, error) {
	return f(ctx)
}
