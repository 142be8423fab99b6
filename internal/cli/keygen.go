package cli

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/umbracle/ethgo/wallet"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new lister private key",
	Long:  `Generate a secp256k1 key pair. Put the private key in LISTER_PRIVATE_KEY and fund the address.`,
	Args:  cobra.NoArgs,
	Run:   runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) {
	key, err := wallet.GenerateKey()
	if err != nil {
		slog.Error("Failed to generate key", "error", err)
		os.Exit(1)
	}

	priv, err := key.MarshallPrivateKey()
	if err != nil {
		slog.Error("Failed to encode key", "error", err)
		os.Exit(1)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "LISTER_PRIVATE_KEY=%s\n", hex.EncodeToString(priv))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ADDRESS=%s\n", key.Address().String())
}
