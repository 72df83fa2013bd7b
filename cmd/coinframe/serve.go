package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"coinFrame/internal/config"
	"coinFrame/internal/frame"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stats frame over HTTP",
		RunE:  runServe,
	}

	addChainFlags(cmd)
	cmd.Flags().String("listen", ":8080", "listen address")
	cmd.Flags().String("base-url", "", "public base URL used in frame links (derived from requests when empty)")
	cmd.Flags().String("reference-symbol", "ETH", "unit label for the reference asset")
	cmd.Flags().StringSlice("allowed-origins", []string{"*"}, "CORS allowed origins (comma-separated)")
	cmd.Flags().Duration("request-timeout", 10*time.Second, "deadline for one resolution")
	cmd.Flags().Duration("read-timeout", 5*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 15*time.Second, "HTTP write timeout")
	cmd.Flags().Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, chainClient, err := newPipeline(ctx, cfg.Config, logger)
	if err != nil {
		return err
	}
	defer chainClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	server, err := frame.NewServer(pipeline, frame.Options{
		BaseURL:         cfg.BaseURL,
		ReferenceSymbol: cfg.ReferenceSymbol,
		AllowedOrigins:  cfg.AllowedOrigins,
		RequestTimeout:  cfg.RequestTimeout,
		Registry:        registry,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	logger.Info("coinframe start",
		zap.String("listen", cfg.Listen),
		zap.String("subgraph", cfg.SubgraphURL),
		zap.String("factory", cfg.Factory),
		zap.String("reference", cfg.Reference),
		zap.Uint32("fee_tier", cfg.FeeTier),
		zap.Uint64("chain_id", cfg.ChainID),
		zap.Duration("request_timeout", cfg.RequestTimeout),
	)

	return server.Run(ctx, cfg.Listen, frame.HTTPConfig{
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
}
