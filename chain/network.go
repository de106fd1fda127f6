package chain

import (
	"context"
	"fmt"
	"math/big"
)

// UnknownNetworkName is reported for chain ids without a well-known name
const UnknownNetworkName = "unknown"

// ChainIDReader is any connection that can report its chain id
type ChainIDReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Network identifies the chain a deployment targets
type Network struct {
	Name    string
	ChainID *big.Int
}

// IsUnknown reports whether the chain had no well-known name
func (n Network) IsUnknown() bool {
	return n.Name == UnknownNetworkName
}

// Names follow the ethers network registry so generated file names match the ones the
// JavaScript tooling produced for the same chains.
var knownNetworks = map[uint64]string{
	1:        "homestead",
	3:        "ropsten",
	4:        "rinkeby",
	5:        "goerli",
	6:        "classicKotti",
	10:       "optimism",
	42:       "kovan",
	56:       "bnb",
	61:       "classic",
	62:       "classicMorden",
	63:       "classicMordor",
	69:       "optimism-kovan",
	97:       "bnbt",
	100:      "xdai",
	137:      "matic",
	420:      "optimism-goerli",
	42161:    "arbitrum",
	80001:    "maticmum",
	421611:   "arbitrum-rinkeby",
	421613:   "arbitrum-goerli",
	11155111: "sepolia",
}

// NetworkForChainID names a chain id, falling back to UnknownNetworkName
func NetworkForChainID(chainID *big.Int) Network {
	name := UnknownNetworkName
	if chainID != nil && chainID.IsUint64() {
		if known, ok := knownNetworks[chainID.Uint64()]; ok {
			name = known
		}
	}
	return Network{Name: name, ChainID: chainID}
}

// NetworkOf queries reader for its chain id and names the network
func NetworkOf(ctx context.Context, reader ChainIDReader) (Network, error) {
	chainID, err := reader.ChainID(ctx)
	if err != nil {
		return Network{}, fmt.Errorf("failed to get chain id: %w", err)
	}
	return NetworkForChainID(chainID), nil
}

// Provider reports the network identity of any ChainIDReader
type Provider struct {
	Reader ChainIDReader
}

// Network queries the chain id and names it
func (p Provider) Network(ctx context.Context) (Network, error) {
	return NetworkOf(ctx, p.Reader)
}
