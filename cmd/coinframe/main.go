package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "coinframe",
		Short:        "Coin stats frame server",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newServeCommand())
	root.AddCommand(newResolveCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "RPC URL")
	cmd.Flags().Uint64("chain-id", 8453, "expected chain id of the RPC endpoint")
	cmd.Flags().String("subgraph", "", "coin subgraph GraphQL endpoint")
	cmd.Flags().String("factory", "", "Uniswap V3 factory address")
	cmd.Flags().String("reference", "", "reference asset address (e.g. WETH)")
	cmd.Flags().Uint32("fee-tier", 3000, "pool fee tier in hundredths of a bip")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
