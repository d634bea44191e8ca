package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/aireview/internal/config"
	"github.com/dshills/aireview/internal/logger"
	"github.com/dshills/aireview/internal/output"
	"github.com/dshills/aireview/internal/providers"
	"github.com/dshills/aireview/internal/review"
)

// flagKeys maps review flags onto config keys.
var flagKeys = map[string]string{
	"base":        config.KeyBase,
	"head":        config.KeyHead,
	"provider":    config.KeyProvider,
	"model":       config.KeyModel,
	"backend":     config.KeyBackend,
	"reporter":    config.KeyReporter,
	"render":      config.KeyRender,
	"timeout":     config.KeyTimeout,
	"retries":     config.KeyRetries,
	"max-tokens":  config.KeyMaxTokens,
	"temperature": config.KeyTemperature,
	"redact":      config.KeyRedact,
	"endpoint":    config.KeyEndpoint,
	"owner":       config.KeyGitHubOwner,
	"repo":        config.KeyGitHubRepo,
	"pr":          config.KeyGitHubPR,
	"log-level":   config.KeyLogLevel,
	"log-format":  config.KeyLogFormat,
}

func (a *app) addReviewFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.String("base", d.Base, "Base reference the branch is compared against")
	f.String("head", d.Head, "Head reference to review")
	f.String("provider", d.Provider, "LLM provider (gemini, openai, anthropic, ollama)")
	f.String("model", "", "Model name (default: the provider's default model)")
	f.String("backend", d.Backend, "Diff backend (exec, go-git)")
	f.String("reporter", d.Reporter, "Where the review goes (console, json, github)")
	f.String("render", d.Render, "Console rendering (plain, markdown)")
	f.Duration("timeout", d.Timeout, "Per-request timeout for the provider API")
	f.Int("retries", d.Retries, "Retries for rate-limited or failed API requests")
	f.Int("max-tokens", d.MaxTokens, "Maximum response tokens (0 = provider default)")
	f.Float64("temperature", d.Temperature, "Sampling temperature, 0 to 2 (0 = provider default)")
	f.Bool("redact", d.Redact, "Redact likely secrets from the diff before sending it")
	f.String("endpoint", "", "Override the provider API base URL")
	f.String("owner", "", "GitHub repository owner (github reporter)")
	f.String("repo", "", "GitHub repository name (github reporter)")
	f.Int("pr", 0, "Pull request number (github reporter, default from GITHUB_REF)")
	f.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	f.String("log-format", d.Log.Format, "Log format (text, json)")
}

// loadConfig layers flags over the environment, the config file and the
// defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := config.New()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return config.Config{}, fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	path, _ := cmd.Flags().GetString("config")
	if err := config.ReadFile(v, path); err != nil {
		return config.Config{}, usageError(err)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, usageError(err)
	}
	return cfg, nil
}

func (a *app) runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, a.stderr)

	// The reviewer is built first so a missing credential fails before git
	// or the network is touched.
	reviewer, err := providers.New(providers.Options{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.Endpoint,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.Retries,
	})
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}

	repo, err := a.newRepo(cfg.Backend, a.dir)
	if err != nil {
		return usageError(err)
	}

	reporter, err := output.New(ctx, cfg, output.Deps{
		Stdout: a.stdout,
		Remote: repo,
		Logger: log,
		Poster: a.poster,
	})
	if err != nil {
		return err
	}

	if meta, err := repo.Meta(ctx); err != nil {
		log.Debug("repository metadata unavailable", "error", err)
	} else {
		log.Debug("reviewing", "root", meta.Root, "branch", meta.Branch, "head", meta.Head)
	}

	p := &review.Pipeline{
		Differ:      repo,
		Reviewer:    reviewer,
		Reporter:    reporter,
		Logger:      log,
		Model:       cfg.Model,
		Redact:      cfg.Redact,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
	res, err := p.Run(ctx, cfg.Base, cfg.Head)
	if err != nil {
		return err
	}
	log.Info("review complete",
		slog.String("provider", res.Provider),
		slog.String("model", res.Model),
		slog.Int("tokens", res.TokensUsed),
		slog.Duration("duration", res.Timing.Total),
	)
	return nil
}
