// Package deploy runs the bonding curve deployment: deploy the contract, wait for it to be
// mined, then write bc-config.<network>.<chainId>.ts for the front end.
package deploy

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/Shivam-Patel-G/bc-deployer/bcconfig"
	"github.com/Shivam-Patel-G/bc-deployer/chain"
	"github.com/Shivam-Patel-G/bc-deployer/journal"
)

// ContractName is the compiled contract this tool deploys
const ContractName = "BondingCurveUniversal"

// FactoryProvider resolves a contract name to a deployable factory
type FactoryProvider interface {
	ContractFactory(ctx context.Context, name string) (ContractFactory, error)
}

// ContractFactory deploys new instances of one contract
type ContractFactory interface {
	Deploy(ctx context.Context) (DeployedContract, error)
}

// DeployedContract is a submitted contract creation
type DeployedContract interface {
	Address() common.Address
	TxHash() common.Hash
	Deployed(ctx context.Context) error
	SignerAddress(ctx context.Context) (common.Address, error)
}

// NetworkProvider reports the identity of the connected network
type NetworkProvider interface {
	Network(ctx context.Context) (chain.Network, error)
}

// Journal stores deployment history
type Journal interface {
	Record(rec journal.Record) (journal.Record, error)
}

// Result is the outcome of a successful run
type Result struct {
	ContractName string
	Address      common.Address
	Owner        common.Address
	TxHash       common.Hash
	Network      chain.Network
	ConfigPath   string
}

// Script is one deployment run
type Script struct {
	ContractName string
	Factories    FactoryProvider
	Network      NetworkProvider
	OutputDir    string
	Logger       *logrus.Logger
	Journal      Journal
}

// Run deploys the contract and writes the config file. Every step runs after the
// previous one finished; the first error aborts the run.
func (s *Script) Run(ctx context.Context) (*Result, error) {
	logger := s.logger()
	name := s.ContractName
	if name == "" {
		name = ContractName
	}

	factory, err := s.Factories.ContractFactory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract factory for %s: %w", name, err)
	}

	logger.Debugf("🚀 Deploying %s", name)
	contract, err := factory.Deploy(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", name, err)
	}

	logger.Debugf("⏳ Waiting for deployment tx %s", contract.TxHash().Hex())
	if err := contract.Deployed(ctx); err != nil {
		return nil, fmt.Errorf("%s deployment was not confirmed: %w", name, err)
	}
	logger.Infof("Contract deployed to address: %s", contract.Address().Hex())

	network, err := s.Network.Network(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	owner, err := contract.SignerAddress(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get deployer address: %w", err)
	}

	dir := s.OutputDir
	if dir == "" {
		dir = "."
	}
	path, err := bcconfig.Write(dir, network.Name, network.ChainID, contract.Address().Hex(), owner.Hex())
	if err != nil {
		return nil, err
	}
	logger.Debugf("📝 Wrote %s", path)

	result := &Result{
		ContractName: name,
		Address:      contract.Address(),
		Owner:        owner,
		TxHash:       contract.TxHash(),
		Network:      network,
		ConfigPath:   path,
	}
	s.record(logger, result)

	return result, nil
}

// record appends the result to the journal. The config file is already written, so a
// journal failure only warns.
func (s *Script) record(logger *logrus.Logger, result *Result) {
	if s.Journal == nil {
		return
	}

	chainID := "0"
	if result.Network.ChainID != nil {
		chainID = result.Network.ChainID.String()
	}
	rec, err := s.Journal.Record(journal.Record{
		ContractName:    result.ContractName,
		Network:         result.Network.Name,
		ChainID:         chainID,
		ContractAddress: result.Address.Hex(),
		OwnerAddress:    result.Owner.Hex(),
		TxHash:          result.TxHash.Hex(),
		ConfigPath:      result.ConfigPath,
	})
	if err != nil {
		logger.Warnf("⚠️ Failed to record deployment in journal: %v", err)
		return
	}
	logger.Debugf("Recorded deployment %s", rec.ID)
}

func (s *Script) logger() *logrus.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
