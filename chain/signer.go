package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DevPrivateKey is account #0 of the default Hardhat/Anvil mnemonic
// "test test test test test test test test test test test junk".
// It is publicly known and only ever used on local development chains.
const DevPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	ErrNoPrivateKey       = errors.New("no deployer private key configured")
	ErrDevKeyOnProduction = errors.New("development key cannot be used on a production network")
)

var devChainIDs = map[int64]bool{
	31337: true, // hardhat, anvil
	1337:  true, // ganache, geth --dev
}

var productionChainIDs = map[int64]string{
	1:     "Ethereum Mainnet",
	10:    "Optimism",
	137:   "Polygon",
	8453:  "Base",
	42161: "Arbitrum One",
}

// Signer holds the deployer key for one chain
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// IsDevChain reports whether chainID belongs to a local development node
func IsDevChain(chainID *big.Int) bool {
	return chainID != nil && chainID.IsInt64() && devChainIDs[chainID.Int64()]
}

// NewSigner parses a hex private key (0x prefix optional). An empty key selects
// DevPrivateKey on development chains and is an error elsewhere.
func NewSigner(privateKeyHex string, chainID *big.Int) (*Signer, error) {
	hexKey := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if hexKey == "" {
		if !IsDevChain(chainID) {
			return nil, fmt.Errorf("%w for chain %s", ErrNoPrivateKey, chainID)
		}
		hexKey = DevPrivateKey
	}

	if strings.EqualFold(hexKey, DevPrivateKey) && chainID != nil && chainID.IsInt64() {
		if name, ok := productionChainIDs[chainID.Int64()]; ok {
			return nil, fmt.Errorf("%w: %s (chain_id=%s)", ErrDevKeyOnProduction, name, chainID)
		}
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// Address returns the deployer address
func (s *Signer) Address() common.Address {
	return s.address
}

// ChainID returns the chain the signer signs for
func (s *Signer) ChainID() *big.Int {
	return s.chainID
}

// TransactOpts returns fresh transaction options bound to ctx
func (s *Signer) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}
