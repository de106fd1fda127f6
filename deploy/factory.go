package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Shivam-Patel-G/bc-deployer/artifacts"
	"github.com/Shivam-Patel-G/bc-deployer/chain"
)

// ErrAddressMismatch is returned when the mined contract address differs from the one
// derived from the deployer nonce at submission time.
var ErrAddressMismatch = errors.New("deployed contract address mismatch")

// Backend is what a go-ethereum deployment needs from the chain connection.
// *ethclient.Client and the simulated backend client both satisfy it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// ArtifactFactories builds contract factories from compiled artifacts on disk
type ArtifactFactories struct {
	Dir     string
	Backend Backend
	Signer  *chain.Signer
}

// ContractFactory loads the artifact for name and binds it to the backend and signer
func (p *ArtifactFactories) ContractFactory(ctx context.Context, name string) (ContractFactory, error) {
	artifact, err := artifacts.Load(p.Dir, name)
	if err != nil {
		return nil, err
	}
	return &Factory{
		Artifact: artifact,
		backend:  p.Backend,
		signer:   p.Signer,
	}, nil
}

// Factory deploys new instances of one compiled contract
type Factory struct {
	Artifact *artifacts.Artifact
	backend  Backend
	signer   *chain.Signer
}

// NewFactory binds an artifact to a backend and signer
func NewFactory(artifact *artifacts.Artifact, backend Backend, signer *chain.Signer) *Factory {
	return &Factory{Artifact: artifact, backend: backend, signer: signer}
}

// Deploy submits the contract-creation transaction without constructor arguments.
// It returns as soon as the transaction is accepted by the node.
func (f *Factory) Deploy(ctx context.Context) (DeployedContract, error) {
	opts, err := f.signer.TransactOpts(ctx)
	if err != nil {
		return nil, err
	}

	address, tx, _, err := bind.DeployContract(opts, f.Artifact.ABI, f.Artifact.Bytecode, f.backend)
	if err != nil {
		return nil, fmt.Errorf("failed to submit %s deployment: %w", f.Artifact.ContractName, err)
	}

	return &Contract{
		address: address,
		tx:      tx,
		backend: f.backend,
		signer:  f.signer,
	}, nil
}

// Contract is a contract whose creation transaction has been submitted
type Contract struct {
	address common.Address
	tx      *types.Transaction
	backend Backend
	signer  *chain.Signer
}

// Address returns the address the contract is created at
func (c *Contract) Address() common.Address {
	return c.address
}

// TxHash returns the creation transaction hash
func (c *Contract) TxHash() common.Hash {
	return c.tx.Hash()
}

// Deployed blocks until the creation transaction is mined and code exists at the address
func (c *Contract) Deployed(ctx context.Context) error {
	address, err := bind.WaitDeployed(ctx, c.backend, c.tx)
	if err != nil {
		return fmt.Errorf("failed to wait for deployment %s: %w", c.tx.Hash().Hex(), err)
	}
	if address != c.address {
		return fmt.Errorf("%w: expected %s, got %s", ErrAddressMismatch, c.address.Hex(), address.Hex())
	}
	return nil
}

// SignerAddress returns the account that paid for the deployment
func (c *Contract) SignerAddress(ctx context.Context) (common.Address, error) {
	return c.signer.Address(), nil
}
