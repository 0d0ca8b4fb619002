package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"digests-ingest/core/feed"
	"digests-ingest/core/fetch"
	"digests-ingest/core/interfaces"
	"digests-ingest/core/workers"
	stdhttp "digests-ingest/infrastructure/http/standard"
	"digests-ingest/infrastructure/logger/structured"
	"digests-ingest/pkg/config"
	"digests-ingest/pkg/featureflags"
)

type fetchCommand struct {
	Args struct {
		URLs []string `positional-arg-name:"url" description:"Feed URLs to ingest" required:"1"`
	} `positional-args:"yes"`
}

func (c *fetchCommand) Execute([]string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// stdout carries batches, so logs default to stderr
	logger, err := structured.New(structured.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
		Output: os.Stderr,
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("Starting ingester", map[string]interface{}{
		"cache_type": cfg.Cache.Type,
		"workers":    cfg.Workers.Count,
		"feeds":      len(c.Args.URLs),
	})

	store, closeStore, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	guards := fetch.DefaultSignatures()
	if cfg.Fetch.GuardFile != "" {
		extra, err := fetch.LoadSignatures(cfg.Fetch.GuardFile)
		if err != nil {
			return err
		}
		guards = append(guards, extra...)
	}

	deps := interfaces.Dependencies{
		Cache:      store,
		HTTPClient: stdhttp.NewStandardHTTPClient(cfg.Fetch.Timeout).WithUserAgent(cfg.Fetch.UserAgent),
		Logger:     logger,
	}

	service, err := feed.NewService(deps, feed.Options{
		FallbackSeconds:  cfg.Fetch.FallbackSeconds,
		DefaultDelay:     cfg.Fetch.DefaultDelay,
		MaxBodyBytes:     cfg.Fetch.MaxBodyBytes,
		ResponseCacheTTL: cfg.Fetch.ResponseCacheTTL,
		Guards:           guards,
		Flags:            featureflags.NewEnvManager(""),
		Strict:           opts.Strict,
	})
	if err != nil {
		return err
	}
	logger.Debug("Pipeline ready", map[string]interface{}{"steps": service.Steps()})

	pool := workers.NewFetchWorker(service, newJSONSink(os.Stdout), service.RateLimits(), logger, workers.WorkerConfig{
		MaxWorkers:    cfg.Workers.Count,
		QueueSize:     cfg.Workers.QueueSize,
		RatePerSecond: cfg.Workers.RatePerSecond,
		Burst:         cfg.Workers.Burst,
	})
	if err := pool.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, u := range c.Args.URLs {
		if _, err := pool.Submit(u); err != nil {
			logger.Error("Failed to submit feed", map[string]interface{}{
				"url":   u,
				"error": err.Error(),
			})
		}
	}

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("Interrupted, dropping remaining jobs", nil)
	}
	if err := pool.Stop(); err != nil {
		return err
	}

	stats := pool.Stats()
	logger.Info("Ingestion finished", map[string]interface{}{
		"stored":   stats.Stored,
		"requeued": stats.Requeued,
		"dropped":  stats.Dropped,
		"failed":   stats.Failed,
	})

	if missed := int64(len(c.Args.URLs)) - stats.Stored; missed > 0 {
		return fmt.Errorf("%d of %d feeds were not ingested", missed, len(c.Args.URLs))
	}
	return nil
}
