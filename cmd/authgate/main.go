// Command authgate runs the authentication service: Redis-backed
// sessions, a Postgres user store, and the HTTP surface.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/soleares/authgate"
	"github.com/soleares/authgate/httpapi"
	"github.com/soleares/authgate/jwt"
	"github.com/soleares/authgate/password"
	"github.com/soleares/authgate/provider"
	"github.com/soleares/authgate/session"
	"github.com/soleares/authgate/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("authgate: %v", err)
	}
}

func run() error {
	cfg, err := authgate.ConfigFromEnv()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}

	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	users, err := store.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer users.Close()

	codec, err := jwt.NewCodec(cfg.SessionSecret)
	if err != nil {
		return err
	}
	registry := session.NewRegistry(rdb, codec, cfg.SessionTTL, cfg.RefreshTTL)

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}

	svc := authgate.NewService(
		authgate.NewUsers(users),
		registry,
		hasher,
		cfg,
		authgate.NewJSONWriterSink(os.Stdout),
	)
	defer svc.Close()

	providers, err := buildProviders(cfg)
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(svc, providers, cfg)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("authgate: listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Print("authgate: shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Print("authgate: stopped cleanly")
	return nil
}

// buildProviders wires only the oauth providers whose client credentials
// are configured; a missing pair just leaves the provider unregistered.
func buildProviders(cfg authgate.Config) (*provider.Registry, error) {
	var providers []provider.Provider

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		google, err := provider.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		providers = append(providers, google)
	}

	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		github, err := provider.NewGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		providers = append(providers, github)
	}

	return provider.NewRegistry(providers...), nil
}
