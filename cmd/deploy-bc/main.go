// deploy-bc deploys the BondingCurveUniversal contract to the configured network and
// writes bc-config.<network>.<chainId>.ts with the contract and owner addresses.
//
// All settings come from BC_* environment variables or bc-deploy.yaml:
//
//	BC_RPC_URL=http://127.0.0.1:8545 BC_ARTIFACTS_DIR=./artifacts deploy-bc
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Shivam-Patel-G/bc-deployer/chain"
	"github.com/Shivam-Patel-G/bc-deployer/config"
	"github.com/Shivam-Patel-G/bc-deployer/deploy"
	"github.com/Shivam-Patel-G/bc-deployer/journal"
)

var rootCmd = &cobra.Command{
	Use:           "deploy-bc",
	Short:         "Deploy BondingCurveUniversal and write its bc-config file",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		_, err = run(cmd.Context(), cfg, cfg.NewLogger())
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "List deployments recorded in the journal (BC_JOURNAL_PATH)",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return printHistory(cmd.OutOrStdout(), cfg.JournalPath)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "❌ %v\n", err)
	}
	os.Exit(exitCode(err))
}

func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

// run wires the deployment from cfg and executes it
func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*deploy.Result, error) {
	if cfg.DeployTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DeployTimeout)
		defer cancel()
	}

	logger.Debugf("🔗 Connecting to %s", cfg.RPCURL)
	client, err := chain.Dial(ctx, cfg.RPCURL, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	signer, err := chain.NewSigner(cfg.PrivateKey, chainID)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Deployer %s on chain %s", signer.Address().Hex(), chainID)

	script := &deploy.Script{
		ContractName: deploy.ContractName,
		Factories: &deploy.ArtifactFactories{
			Dir:     cfg.ArtifactsDir,
			Backend: client,
			Signer:  signer,
		},
		Network:   client,
		OutputDir: cfg.OutputDir,
		Logger:    logger,
	}

	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			logger.Warnf("⚠️ Deployment journal disabled: %v", err)
		} else {
			defer j.Close()
			script.Journal = j
		}
	}

	return script.Run(ctx)
}

func printHistory(w io.Writer, journalPath string) error {
	if journalPath == "" {
		return fmt.Errorf("journal is disabled, set %s_JOURNAL_PATH", config.EnvPrefix)
	}

	j, err := journal.Open(journalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	records, err := j.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "No deployments recorded")
		return nil
	}

	bold := color.New(color.Bold)
	for _, rec := range records {
		bold.Fprintf(w, "%s  %s\n", rec.DeployedAt.Format("2006-01-02 15:04:05"), rec.ContractName)
		fmt.Fprintf(w, "  network:  %s (%s)\n", rec.Network, rec.ChainID)
		fmt.Fprintf(w, "  contract: %s\n", rec.ContractAddress)
		fmt.Fprintf(w, "  owner:    %s\n", rec.OwnerAddress)
		fmt.Fprintf(w, "  tx:       %s\n", rec.TxHash)
		fmt.Fprintf(w, "  config:   %s\n", rec.ConfigPath)
	}
	return nil
}
