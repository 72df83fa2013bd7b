package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"coinFrame/internal/config"
	"coinFrame/internal/resolver"
)

func newResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <symbol>",
		Short: "Resolve one symbol and print its stats as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}

	addChainFlags(cmd)
	cmd.Flags().Duration("timeout", 10*time.Second, "deadline for the resolution")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pipeline, chainClient, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	stats, err := pipeline.Resolve(ctx, args[0])
	if err != nil {
		kind := resolver.KindOf(err)
		return fmt.Errorf("%s (%s): %w", kind.Message(), kind, err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
