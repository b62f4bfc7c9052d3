package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"masterpiece/internal/bootstrap"
	"masterpiece/internal/gate"
	"masterpiece/internal/http/handlers"
	httpapi "masterpiece/internal/http/httpapi"
	"masterpiece/internal/infra"
	"masterpiece/internal/infra/geoip"
	"masterpiece/internal/middleware"
	"masterpiece/internal/studio"
)

const videoURLPrefix = "/v1/videos/"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := bootstrap.Build(ctx, cfg, &logger, bootstrap.Options{
		Prompter:  gate.ContextPrompter{},
		Source:    "http",
		URLPrefix: videoURLPrefix,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to build generation stack")
	}
	defer stack.Close()

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("api: geoip disabled")
	}
	if closer, ok := resolver.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	st := studio.New(studio.Options{
		Gate:      stack.Gate,
		Generator: stack.Controller,
		Blobs:     stack.Blobs,
		Logger:    &logger,
	})
	defer st.Close()
	ready := st.Mount(ctx)
	logger.Info().
		Str("credential_source", cfg.CredentialSource).
		Str("provider", cfg.VideoProvider).
		Bool("api_key_ready", ready).
		Msg("api: studio mounted")

	app := handlers.NewApp(st, &logger, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:               logger,
		AllowedOrigins:       cfg.CORSAllowedOrigins,
		RateLimitPerMin:      cfg.RateLimitPerMin,
		StateRateLimitPerMin: cfg.StateRateLimitPerMin,
		DefaultLocale:        cfg.DefaultLocale,
		CountryLookup:        middleware.LookupFromResolver(resolver),
	})

	server := infra.NewHTTPServer(cfg, router)
	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("api: listening")
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("api: http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api: failed to shutdown server")
	}
	logger.Info().Msg("api: stopped")
}
