// Package bootstrap turns configuration into the generation stack shared by
// the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"masterpiece/internal/blob"
	"masterpiece/internal/gate"
	"masterpiece/internal/infra"
	"masterpiece/internal/infra/credentials"
	"masterpiece/internal/lifecycle"
	"masterpiece/internal/providers/genai"
	"masterpiece/internal/providers/video"
)

// syntheticKey stands in for a real key so local synthetic runs pass the gate.
const syntheticKey = "synthetic-local"

type Options struct {
	// Prompter backs key selection when keys live in the store.
	Prompter gate.Prompter
	// Source is recorded next to a stored key ("http", "cli").
	Source string
	// URLPrefix is the prefix of handle URLs.
	URLPrefix string
	// HTTPClient overrides the client used for the remote API.
	HTTPClient *http.Client
}

// Stack is the wired generation pipeline.
type Stack struct {
	Gate       *gate.Gate
	Service    video.Service
	Controller *lifecycle.Controller
	Blobs      *blob.Registry
	Store      *credentials.Store

	closers []func()
}

// Close releases the database pool, if any.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func Build(ctx context.Context, cfg *infra.Config, logger *infra.Logger, opts Options) (*Stack, error) {
	if logger == nil {
		logger = infra.NopLogger()
	}
	stack := &Stack{Blobs: blob.NewRegistry(opts.URLPrefix)}

	host, err := stack.buildHost(ctx, cfg, logger, opts)
	if err != nil {
		stack.Close()
		return nil, err
	}
	stack.Gate = gate.New(host, logger)
	stack.Service = buildService(cfg, logger, opts.HTTPClient)

	stack.Controller, err = lifecycle.New(lifecycle.Options{
		Credentials: stack.Gate,
		Service:     stack.Service,
		Blobs:       stack.Blobs,
		Poll:        cfg.Poll,
		Logger:      logger,
	})
	if err != nil {
		stack.Close()
		return nil, err
	}
	return stack, nil
}

func (s *Stack) buildHost(ctx context.Context, cfg *infra.Config, logger *infra.Logger, opts Options) (gate.Host, error) {
	switch cfg.CredentialSource {
	case infra.CredentialSourceStore:
		pool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		s.Store = credentials.NewStore(infra.NewSQLRunner(pool, *logger))
		if err := s.Store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure credential schema: %w", err)
		}
		return gate.NewStoreHost(s.Store, opts.Prompter, opts.Source), nil
	case infra.CredentialSourceEnv, "":
		key := cfg.VeoAPIKey
		if key == "" && cfg.VideoProvider == infra.VideoProviderSynthetic {
			logger.Warn().Msg("bootstrap: no api key configured, synthetic provider runs with a placeholder")
			key = syntheticKey
		}
		return gate.NewEnvHost(key), nil
	default:
		return nil, fmt.Errorf("unsupported credential source %q", cfg.CredentialSource)
	}
}

func buildService(cfg *infra.Config, logger *infra.Logger, client *http.Client) video.Service {
	if cfg.VideoProvider == infra.VideoProviderSynthetic {
		return video.NewSynthetic(2, logger)
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	gc := genai.NewClient(genai.Options{
		BaseURL:    cfg.VeoBaseURL,
		Model:      cfg.VeoModel,
		Resolution: cfg.VeoResolution,
		HTTPClient: client,
		Logger:     logger,
	})
	logger.Info().Str("model", gc.Model()).Msg("bootstrap: veo client ready")
	return video.NewVeo(gc, logger)
}
