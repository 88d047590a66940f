// Command web starts the Sonify-Go HTTP service which turns a location into
// a mood-matched Spotify playlist. Configuration is read once at startup
// from an optional TOML file, a .env file and environment variables; the
// resulting values are passed explicitly to every component.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"Sonify-Go/pkg/config"
	"Sonify-Go/pkg/handlers"
	"Sonify-Go/pkg/metrics"
	"Sonify-Go/pkg/mood"
	"Sonify-Go/pkg/music"
	"Sonify-Go/pkg/spotify"
	"Sonify-Go/pkg/weather"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("sonify exited")
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "sonify",
		Usage: "Recommend a Spotify playlist that matches the mood of the local weather",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional TOML configuration file",
				Value:   "sonify.toml",
				Sources: cli.EnvVars("SONIFY_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file loaded before reading the environment",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides ADDR",
			},
		},
		Action: serve,
	}
}

// serve loads the configuration, wires the pipeline and runs the HTTP
// server until ctx is canceled.
func serve(ctx context.Context, cmd *cli.Command) error {
	if err := config.LoadDotEnv(cmd.String("env-file")); err != nil {
		return err
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("addr") {
		cfg.Server.Addr = cmd.String("addr")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.Server.LogLevel)
	stages := metrics.New()
	app := &handlers.Application{
		Pipeline:    newPipeline(cfg, stages, logger),
		FrontendURL: cfg.Server.FrontendURL,
		Logger:      logger,
	}

	timeout := cfg.Server.UpstreamTimeout.Duration
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(app, cfg.Server.AllowedOrigin, stages.Handler(), logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Three sequential upstream calls plus headroom.
		WriteTimeout: 3*timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Server.Addr).Info("sonify started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) *log.Logger {
	l := log.New()
	l.SetFormatter(&log.JSONFormatter{})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		l.WithField("level", level).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// newHTTPClient returns a client with its own connection pool so no
// connection is shared between providers.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: http.DefaultTransport.(*http.Transport).Clone(),
	}
}

func newPipeline(cfg config.Config, observer music.Observer, logger log.FieldLogger) *music.Orchestrator {
	timeout := cfg.Server.UpstreamTimeout.Duration
	return &music.Orchestrator{
		Auth: spotify.NewAuthenticator(spotify.AuthConfig{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RedirectURL:  cfg.Spotify.RedirectURI,
			AuthURL:      cfg.Spotify.AuthURL,
			TokenURL:     cfg.Spotify.TokenURL,
			HTTPClient:   newHTTPClient(timeout),
		}),
		Weather: &weather.Client{
			Key:    cfg.Weather.APIKey,
			URL:    cfg.Weather.URL,
			Client: newHTTPClient(timeout),
		},
		Mood: mood.NewClassifier(mood.Config{
			APIKey:     cfg.OpenAI.APIKey,
			Model:      cfg.OpenAI.Model,
			BaseURL:    cfg.OpenAI.BaseURL,
			HTTPClient: newHTTPClient(timeout),
		}),
		Playlists: spotify.NewPlaylistResolver(newHTTPClient(timeout)),
		Observer:  observer,
		Logger:    logger,
	}
}

// newRouter registers the application routes and the middleware shared by
// all of them.
func newRouter(app *handlers.Application, allowedOrigin string, metricsHandler http.Handler, logger log.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(handlers.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(handlers.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", app.Health)
	r.Get("/login", app.Login)
	r.Get("/callback", app.OAuthCallback)
	r.Post("/get-playlist", app.GetPlaylist)
	r.Method(http.MethodGet, "/metrics", metricsHandler)
	return r
}
