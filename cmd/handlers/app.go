package handlers

import (
	"fmt"

	"newsly/internal/agent"
	"newsly/internal/config"
	"newsly/internal/email"
	"newsly/internal/hackernews"
	"newsly/internal/pipeline"
	"newsly/internal/source"
	"newsly/internal/store"
)

// app bundles the wired service components shared by the subcommands.
type app struct {
	cfg      *config.Config
	store    *store.Store
	pipeline *pipeline.Pipeline
	mailer   *email.Mailer
	agent    *agent.Runner
}

// buildApp wires the store, story source, pipeline, and mailer from the
// loaded configuration.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.New(cfg.Database.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	var runner *agent.Runner
	if cfg.Agent.Enabled {
		runner = agent.NewRunner(agent.Config{
			Command:    cfg.Agent.Command,
			Args:       cfg.Agent.Args,
			Timeout:    cfg.Agent.Timeout,
			MaxCalls:   cfg.Agent.MaxCalls,
			RateWindow: cfg.Agent.RateWindow,
		})
	}

	var opts []hackernews.Option
	if cfg.HackerNews.BaseURL != "" {
		opts = append(opts, hackernews.WithBaseURL(cfg.HackerNews.BaseURL))
	}
	if cfg.HackerNews.Timeout > 0 {
		opts = append(opts, hackernews.WithTimeout(cfg.HackerNews.Timeout))
	}
	hn := hackernews.NewClient(opts...)

	src := source.New(source.Config{
		AgentEnabled: cfg.Agent.Enabled,
		Concurrency:  cfg.HackerNews.Concurrency,
	}, runner, hn)

	pl := pipeline.New(pipeline.Config{AgentEnabled: cfg.Agent.Enabled}, runner, src)

	return &app{
		cfg:      cfg,
		store:    st,
		pipeline: pl,
		mailer:   email.New(cfg.Email),
		agent:    runner,
	}, nil
}

func (a *app) Close() {
	_ = a.store.Close()
}
