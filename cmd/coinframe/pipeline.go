package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coinFrame/internal/chain"
	"coinFrame/internal/config"
	"coinFrame/internal/dex"
	"coinFrame/internal/resolver"
	"coinFrame/internal/subgraph"
)

// newPipeline dials the RPC endpoint and assembles the resolver. The caller closes the client.
func newPipeline(ctx context.Context, cfg config.Config, logger *zap.Logger) (*resolver.Pipeline, *chain.Client, error) {
	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}
	if err := chainClient.VerifyChainID(ctx, cfg.ChainID); err != nil {
		chainClient.Close()
		return nil, nil, err
	}

	coins := subgraph.NewClient(cfg.SubgraphURL, nil)
	locator := dex.NewPoolLocator(chainClient, cfg.FactoryAddress())
	reader := dex.NewPoolReader(chainClient)

	pipeline := resolver.New(coins, locator, reader, resolver.Settings{
		Reference: cfg.ReferenceAddress(),
		FeeTier:   cfg.FeeTier,
	}, logger)

	return pipeline, chainClient, nil
}
