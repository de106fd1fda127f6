// Package chain connects to the configured EVM network and exposes the network identity
// and the deploying account.
package chain

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gorilla/websocket"
)

// Client is an ethclient bound to one RPC endpoint
type Client struct {
	*ethclient.Client
	rpcURL string
}

// Dial connects to an http(s) or ws(s) RPC endpoint. A positive timeout bounds the
// connection handshake.
func Dial(ctx context.Context, rpcURL string, timeout time.Duration) (*Client, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var opts []rpc.ClientOption
	if isWebsocket(rpcURL) {
		opts = append(opts, rpc.WithWebsocketDialer(websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: timeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		}))
	}

	rpcClient, err := rpc.DialOptions(ctx, rpcURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	return &Client{
		Client: ethclient.NewClient(rpcClient),
		rpcURL: rpcURL,
	}, nil
}

// URL returns the endpoint the client was dialed with
func (c *Client) URL() string {
	return c.rpcURL
}

// Network queries the chain id and names it
func (c *Client) Network(ctx context.Context) (Network, error) {
	return NetworkOf(ctx, c.Client)
}

// IsConnected checks if the endpoint answers within five seconds
func (c *Client) IsConnected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.BlockNumber(ctx)
	return err == nil
}

func isWebsocket(rpcURL string) bool {
	u := strings.ToLower(rpcURL)
	return strings.HasPrefix(u, "ws://") || strings.HasPrefix(u, "wss://")
}
