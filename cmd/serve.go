package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/asd638796/spotify-playlist-shuffler/internal/auth"
	"github.com/asd638796/spotify-playlist-shuffler/internal/repositories"
	"github.com/asd638796/spotify-playlist-shuffler/internal/server"
	"github.com/asd638796/spotify-playlist-shuffler/internal/services"
	"github.com/asd638796/spotify-playlist-shuffler/internal/shared"
	"github.com/asd638796/spotify-playlist-shuffler/internal/tasks"
)

// Serve assembles the service and runs the HTTP server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if config.Credentials.Spotify.ClientID == "" {
		return fmt.Errorf("%w: spotify client_id (set SPOTIFY_CLIENT_ID or edit config.toml)", shared.ErrMissingCredentials)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	timeout := time.Duration(config.Server.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	var challenges auth.ChallengeStore
	if config.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		defer client.Close()
		challenges = auth.NewRedisChallengeStore(client)
		r.logger.Info("using redis challenge store", "addr", config.Redis.Addr)
	} else {
		challenges = auth.NewMemoryChallengeStore()
	}

	tokens := repositories.NewTokenRepository(db)

	manager, err := auth.NewManager(auth.ManagerOpts{
		ClientID:    config.Credentials.Spotify.ClientID,
		RedirectURI: config.Credentials.Spotify.RedirectURI,
		Tokens:      tokens,
		Challenges:  challenges,
		Logger:      shared.WithLogger(r.logger, "component", "auth"),
		HTTPClient:  httpClient,
	})
	if err != nil {
		return err
	}

	spotify, err := services.NewSpotifyClient(services.SpotifyClientOpts{
		HTTPClient: httpClient,
		Tokens:     manager,
		Logger:     shared.WithLogger(r.logger, "component", "spotify"),
	})
	if err != nil {
		return err
	}

	engine, err := tasks.NewShuffleEngine(tasks.ShuffleEngineOpts{
		Client: spotify,
		Logger: shared.WithLogger(r.logger, "component", "shuffle"),
	})
	if err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	router.Handler(server.NewAuthHandler(server.AuthHandlerOpts{
		Manager:    manager,
		Logger:     shared.WithLogger(r.logger, "component", "auth-handler"),
		AppURL:     config.Server.AppURL,
		Production: config.Server.Production,
	}))
	router.Handler(server.NewRandomizeHandler(engine, shared.WithLogger(r.logger, "component", "randomize-handler")))
	router.Handler(server.NewHealthHandler(db, challenges))

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}
