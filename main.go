// server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lumina-notes/lumina-server/config"
	httpserver "github.com/lumina-notes/lumina-server/http"
	"github.com/lumina-notes/lumina-server/identity"
	"github.com/lumina-notes/lumina-server/store"
	"github.com/lumina-notes/lumina-server/ws"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("LUMINA_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg)

	if err := store.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	hub := ws.NewHub(log)
	go hub.Run()

	server := httpserver.NewServer(httpserver.Options{
		Notes:         st,
		Users:         st,
		Identity:      identity.NewService(cfg.JWTSecret, cfg.ClockSkew),
		Hub:           hub,
		Logger:        log,
		WebhookSecret: cfg.WebhookSecret,
		AllowOrigins:  cfg.AllowOrigins,
	})
	app := server.App()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stderr
	logger := zerolog.New(out)
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out})
	}
	return logger.Level(level).With().Timestamp().Logger()
}
