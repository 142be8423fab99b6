package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dimitribekale/ai-marketplace/internal/infra/chain/evm"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the node, lister account and contract state",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	contractABI, err := evm.LoadABI(cfg.Chain.ABIPath)
	if err != nil {
		slog.Error("Failed to load contract interface", "error", err)
		os.Exit(1)
	}

	client, err := evm.Dial(evm.Config{
		RPCURL:          cfg.Chain.RPCURL,
		ContractAddress: cfg.Chain.ContractAddress,
		PrivateKey:      cfg.Chain.PrivateKey,
		GasLimit:        cfg.Chain.GasLimit,
	}, contractABI)
	if err != nil {
		slog.Error("Failed to connect to node", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = client.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	block := "-"
	if height, err := client.BlockNumber(ctx); err != nil {
		slog.Warn("Failed to read latest block", "error", err)
	} else {
		block = fmt.Sprintf("%d", height)
	}

	count := "-"
	if n, err := client.ReadCount(ctx); err != nil {
		slog.Warn("Failed to read model count", "error", err)
	} else {
		count = n.String()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CHAIN\tLISTER\tCONTRACT\tBLOCK\tMODELS")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		client.ChainID().String(),
		client.Address().String(),
		client.Contract().String(),
		block,
		count,
	)
	_ = w.Flush()
}
