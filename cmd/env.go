package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/toolspec-cli/internal/config"
	"github.com/sells-group/toolspec-cli/internal/fetcher"
	"github.com/sells-group/toolspec-cli/internal/job"
	"github.com/sells-group/toolspec-cli/internal/resilience"
	"github.com/sells-group/toolspec-cli/internal/resolve"
	"github.com/sells-group/toolspec-cli/internal/store"
	"github.com/sells-group/toolspec-cli/internal/supplier"
	"github.com/sells-group/toolspec-cli/pkg/render"
)

// env wires the resolution components from config.
type env struct {
	Orchestrator *resolve.Orchestrator
	Registry     *job.Registry
	Hub          *job.Hub
	Store        store.Store // nil when history is disabled
}

func buildEnv(c *config.Config) (*env, error) {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  c.Fetch.UserAgent,
		Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: c.Fetch.MaxRetries,
	})

	var renderOpts []render.Option
	if c.Render.BaseURL != "" {
		renderOpts = append(renderOpts, render.WithBaseURL(c.Render.BaseURL))
	}
	renderer := render.NewClient(c.Render.Key, renderOpts...)

	registry := supplier.DefaultRegistry(f, renderer, supplier.Options{
		MetricOnly:     c.Resolve.MetricOnly,
		AttemptTimeout: c.Resolve.RenderTimeout(),
		SettleMillis:   c.Resolve.SettleMillis,
	})

	envelope := resilience.NewEnvelope(resilience.EnvelopeConfig{
		MaxAttempts:    c.Resolve.MaxAttempts,
		AttemptTimeout: c.Resolve.AttemptTimeout(),
		RetryDelay:     c.Resolve.RetryDelay(),
	})

	e := &env{
		Orchestrator: resolve.New(registry, envelope, c.Resolve.MaxConcurrent),
		Registry:     job.NewRegistry(time.Duration(c.Registry.RetentionHours) * time.Hour),
		Hub:          job.NewHub(),
	}

	if c.Store.Path != "" {
		st, err := store.NewSQLite(c.Store.Path)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(context.Background()); err != nil {
			_ = st.Close()
			return nil, err
		}
		e.Store = st
	}

	return e, nil
}

func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("closing job store", zap.Error(err))
		}
	}
}
