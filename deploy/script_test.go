package deploy

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivam-Patel-G/bc-deployer/bcconfig"
	"github.com/Shivam-Patel-G/bc-deployer/chain"
	"github.com/Shivam-Patel-G/bc-deployer/journal"
)

var (
	testContractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	testOwnerAddr    = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	errRejected      = errors.New("transaction rejected")
)

type fakeContract struct {
	deployErr error
	calls     *[]string
}

func (c *fakeContract) Address() common.Address { return testContractAddr }
func (c *fakeContract) TxHash() common.Hash     { return common.HexToHash("0x01") }

func (c *fakeContract) Deployed(ctx context.Context) error {
	*c.calls = append(*c.calls, "deployed")
	return c.deployErr
}

func (c *fakeContract) SignerAddress(ctx context.Context) (common.Address, error) {
	*c.calls = append(*c.calls, "signer")
	return testOwnerAddr, nil
}

type fakeFactory struct {
	submitErr  error
	confirmErr error
	calls      *[]string
}

func (f *fakeFactory) Deploy(ctx context.Context) (DeployedContract, error) {
	*f.calls = append(*f.calls, "deploy")
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &fakeContract{deployErr: f.confirmErr, calls: f.calls}, nil
}

type fakeProvider struct {
	factory   *fakeFactory
	lookupErr error
	names     []string
}

func (p *fakeProvider) ContractFactory(ctx context.Context, name string) (ContractFactory, error) {
	p.names = append(p.names, name)
	if p.lookupErr != nil {
		return nil, p.lookupErr
	}
	return p.factory, nil
}

type fakeNetwork struct {
	network chain.Network
	err     error
	calls   *[]string
}

func (n *fakeNetwork) Network(ctx context.Context) (chain.Network, error) {
	*n.calls = append(*n.calls, "network")
	return n.network, n.err
}

type failingJournal struct{}

func (failingJournal) Record(rec journal.Record) (journal.Record, error) {
	return journal.Record{}, errors.New("disk full")
}

type scriptFixture struct {
	script   *Script
	provider *fakeProvider
	factory  *fakeFactory
	network  *fakeNetwork
	calls    []string
	logs     *bytes.Buffer
}

func newScriptFixture(t *testing.T, networkName string, chainID int64) *scriptFixture {
	t.Helper()
	fx := &scriptFixture{logs: &bytes.Buffer{}}
	fx.factory = &fakeFactory{calls: &fx.calls}
	fx.provider = &fakeProvider{factory: fx.factory}
	fx.network = &fakeNetwork{
		network: chain.Network{Name: networkName, ChainID: big.NewInt(chainID)},
		calls:   &fx.calls,
	}

	logger := logrus.New()
	logger.SetOutput(fx.logs)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	fx.script = &Script{
		Factories: fx.provider,
		Network:   fx.network,
		OutputDir: t.TempDir(),
		Logger:    logger,
	}
	return fx
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestScriptRun(t *testing.T) {
	fx := newScriptFixture(t, "unknown", 31337)

	result, err := fx.script.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{ContractName}, fx.provider.names)
	assert.Equal(t, []string{"deploy", "deployed", "network", "signer"}, fx.calls)

	assert.Equal(t, testContractAddr, result.Address)
	assert.Equal(t, testOwnerAddr, result.Owner)
	assert.Equal(t, "unknown", result.Network.Name)
	assert.Equal(t, filepath.Join(fx.script.OutputDir, "bc-config.local.31337.ts"), result.ConfigPath)

	content, err := os.ReadFile(result.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, bcconfig.Render(testContractAddr.Hex(), testOwnerAddr.Hex()), string(content))

	lines := strings.Split(strings.TrimSpace(fx.logs.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "level=info")
	assert.Contains(t, lines[0], "Contract deployed to address: "+testContractAddr.Hex())
}

func TestScriptRunTwiceOverwrites(t *testing.T) {
	fx := newScriptFixture(t, "sepolia", 11155111)

	first, err := fx.script.Run(context.Background())
	require.NoError(t, err)
	before, err := os.ReadFile(first.ConfigPath)
	require.NoError(t, err)

	second, err := fx.script.Run(context.Background())
	require.NoError(t, err)
	after, err := os.ReadFile(second.ConfigPath)
	require.NoError(t, err)

	assert.Equal(t, first.ConfigPath, second.ConfigPath)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"bc-config.sepolia.11155111.ts"}, listFiles(t, fx.script.OutputDir))
}

func TestScriptRunFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(fx *scriptFixture)
	}{
		{"factory lookup", func(fx *scriptFixture) { fx.provider.lookupErr = errRejected }},
		{"deploy rejected", func(fx *scriptFixture) { fx.factory.submitErr = errRejected }},
		{"confirmation failed", func(fx *scriptFixture) { fx.factory.confirmErr = errRejected }},
		{"network query", func(fx *scriptFixture) { fx.network.err = errRejected }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newScriptFixture(t, "unknown", 31337)
			tt.setup(fx)

			result, err := fx.script.Run(context.Background())
			assert.ErrorIs(t, err, errRejected)
			assert.Nil(t, result)
			assert.Empty(t, listFiles(t, fx.script.OutputDir))
		})
	}
}

func TestScriptRunWriteFailure(t *testing.T) {
	fx := newScriptFixture(t, "unknown", 31337)
	fx.script.OutputDir = filepath.Join(fx.script.OutputDir, "missing")

	result, err := fx.script.Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, fx.calls, "deployed")
}

func TestScriptRunJournal(t *testing.T) {
	t.Run("records deployment", func(t *testing.T) {
		fx := newScriptFixture(t, "goerli", 5)
		j, err := journal.Open(filepath.Join(t.TempDir(), "deployments.db"))
		require.NoError(t, err)
		defer j.Close()
		fx.script.Journal = j

		result, err := fx.script.Run(context.Background())
		require.NoError(t, err)

		records, err := j.List()
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, ContractName, records[0].ContractName)
		assert.Equal(t, "goerli", records[0].Network)
		assert.Equal(t, "5", records[0].ChainID)
		assert.Equal(t, testContractAddr.Hex(), records[0].ContractAddress)
		assert.Equal(t, result.ConfigPath, records[0].ConfigPath)
	})

	t.Run("journal failure only warns", func(t *testing.T) {
		fx := newScriptFixture(t, "goerli", 5)
		fx.script.Journal = failingJournal{}

		result, err := fx.script.Run(context.Background())
		require.NoError(t, err)
		assert.FileExists(t, result.ConfigPath)
		assert.Contains(t, fx.logs.String(), "level=warning")
	})
}
