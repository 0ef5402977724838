package chain

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// RPCProvider is an external wallet reachable over JSON-RPC, such as a local
// signer exposing eth_requestAccounts.
type RPCProvider struct {
	endpoint string
}

// NewRPCProvider returns a provider for endpoint. An empty endpoint yields a
// provider that is never available.
func NewRPCProvider(endpoint string) *RPCProvider {
	return &RPCProvider{endpoint: strings.TrimSpace(endpoint)}
}

// Available reports whether the endpoint is configured. IPC endpoints must
// exist on disk at the time of the call.
func (p *RPCProvider) Available() bool {
	switch {
	case p.endpoint == "":
		return false
	case isNetworkEndpoint(p.endpoint):
		return true
	default:
		_, err := os.Stat(p.endpoint)
		return err == nil
	}
}

// RequestAccounts asks the provider for the accounts the user approves.
func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	client, err := rpc.DialContext(ctx, p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial wallet provider: %w", err)
	}
	defer client.Close()

	var accounts []string
	if err := client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		return nil, fmt.Errorf("eth_requestAccounts: %w", err)
	}

	return accounts, nil
}

func isNetworkEndpoint(endpoint string) bool {
	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(endpoint, scheme) {
			return true
		}
	}

	return false
}
