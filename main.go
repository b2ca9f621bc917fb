package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pathrecall/internal/config"
	"github.com/robalobadob/pathrecall/internal/events"
	"github.com/robalobadob/pathrecall/internal/httpserver"
	"github.com/robalobadob/pathrecall/internal/session"
	"github.com/robalobadob/pathrecall/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	hub := events.NewHub(cfg.ClientOrigin)
	sessions := session.NewManager(cfg.SessionSecret, cfg.CookieName, cfg.SessionTTL, cfg.Production)

	srv, err := httpserver.New(cfg, mem, hub, sessions)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	go pruneLoop(ctx, mem, cfg.RoundTTL)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Int("gridSize", cfg.GridSize).
		Int("defaultLength", cfg.DefaultLength).
		Dur("displayTime", cfg.DisplayTime).
		Msg("starting go-server")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping default")
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// pruneLoop drops rounds nobody has touched for ttl.
func pruneLoop(ctx context.Context, st store.Store, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 2
	if interval <= 0 {
		interval = ttl
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := st.Prune(ctx, now.Add(-ttl)); n > 0 {
				log.Debug().Int("pruned", n).Msg("pruned idle rounds")
			}
		}
	}
}
