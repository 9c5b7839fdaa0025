package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/countdown/go/internal/countdown"
	"github.com/mcdev12/countdown/go/internal/gateway"
	"github.com/mcdev12/countdown/go/internal/notify"
	"github.com/mcdev12/countdown/go/internal/poller"
	"github.com/mcdev12/countdown/go/internal/timers"
	"github.com/mcdev12/countdown/go/internal/timers/events"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	setupLogging()

	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
		log.Warn().Str("path", *configPath).Msg("config file not found, using defaults")
		cfg = defaultConfig()
		applyEnvOverrides(cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Event fan-out: the WebSocket gateway always receives events, NATS
	// only when enabled.
	dispatcher := events.NewDispatcher()

	connManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	dispatcher.AddSink(connManager)

	var natsPublisher *notify.NATSPublisher
	if cfg.NATS.Enabled {
		natsConfig := notify.DefaultNATSConfig()
		natsConfig.URL = cfg.NATS.URL
		natsConfig.SubjectPrefix = cfg.NATS.SubjectPrefix
		natsConfig.PublishTicks = cfg.NATS.PublishTicks

		natsPublisher, err = notify.NewNATSPublisher(natsConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect NATS publisher")
		}
		defer natsPublisher.Close()
		dispatcher.AddSink(natsPublisher)
	}

	repo := timers.NewRepository()
	app := timers.NewApp(repo, dispatcher, nil)

	seedTimers(ctx, app, cfg.Timers)

	tickPoller := poller.New(app, time.Duration(cfg.Poll.IntervalMs)*time.Millisecond)

	stateHandler := gateway.NewStateHandler(app)
	controlHandler := gateway.NewControlHandler(app, app)
	wsHandler := gateway.NewWebSocketHandler(connManager, app)

	server := setupServer(cfg, stateHandler, controlHandler, wsHandler)

	go connManager.Start(ctx)
	go func() {
		if err := tickPoller.Run(ctx); err != nil {
			log.Error().Err(err).Msg("poller stopped")
		}
	}()
	go func() {
		log.Info().Str("addr", server.Addr).Msg("timer service listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// seedTimers creates the timers declared in the config so the service comes
// up with them registered and idle.
func seedTimers(ctx context.Context, app *timers.App, seeds []SeedTimer) {
	for _, seed := range seeds {
		durationSec := 0
		if seed.Duration != "" {
			parsed, err := countdown.ParseClock(seed.Duration)
			if err != nil {
				log.Warn().
					Str("label", seed.Label).
					Str("duration", seed.Duration).
					Msg("skipping seed timer with invalid duration")
				continue
			}
			durationSec = parsed
		}

		if _, err := app.CreateTimer(ctx, timers.CreateTimerRequest{
			Label:       seed.Label,
			DurationSec: durationSec,
		}); err != nil {
			log.Error().Err(err).Str("label", seed.Label).Msg("failed to create seed timer")
		}
	}
}
