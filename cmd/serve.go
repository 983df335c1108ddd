package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adri-yano/social-media-app/config"
	database "github.com/adri-yano/social-media-app/db"
	"github.com/adri-yano/social-media-app/handler"
	"github.com/adri-yano/social-media-app/logging"
	"github.com/adri-yano/social-media-app/metrics"
	natsClient "github.com/adri-yano/social-media-app/nats"
	"github.com/adri-yano/social-media-app/pkg/password"
	"github.com/adri-yano/social-media-app/publisher"
	"github.com/adri-yano/social-media-app/repository"
	"github.com/adri-yano/social-media-app/session"
	"github.com/adri-yano/social-media-app/storage"
)

func newServeCmd() *cobra.Command {
	var migrateOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg, migrateOnStart)
		},
	}
	cmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(cfg *config.Config, migrateOnStart bool) error {
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Connect to the database
	dbConn, err := database.NewConnection(database.Config{
		URL:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		MaxLifetime:  cfg.Database.MaxLifetime,
	})
	if err != nil {
		return err
	}
	defer dbConn.Close()
	logger.Info("Successfully connected to database")

	if migrateOnStart {
		if err := dbConn.MigrateUp(); err != nil {
			return err
		}
		logger.Info("Migrations applied")
	}

	hasher, err := password.NewHasher(cfg.Session.BcryptCost)
	if err != nil {
		return err
	}

	var denylist session.Denylist
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		denylist = session.NewRedisDenylist(rdb)
		logger.Info("Session revocation enabled")
	}

	// Event publishing is optional. A nil transport disables it.
	var transport publisher.Transport
	if cfg.NATS.URL != "" {
		nc, err := natsClient.NewClient(natsClient.Config{
			URL:           cfg.NATS.URL,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
			ClientID:      cfg.NATS.ClientID,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize NATS client: %w", err)
		}
		defer func() {
			if err := nc.Drain(); err != nil {
				logger.WithError(err).Warn("Failed to drain NATS connection")
			}
		}()
		transport = nc
		logger.Info("NATS client initialized successfully")
	}

	m := metrics.New()

	router := handler.NewRouter(handler.Deps{
		Users:    repository.NewUserRepository(dbConn.DB),
		Posts:    repository.NewPostRepository(dbConn.DB),
		Comments: repository.NewCommentRepository(dbConn.DB),
		Likes:    repository.NewLikeRepository(dbConn.DB),
		Follows:  repository.NewFollowRepository(dbConn.DB),
		Sessions: session.NewManager(session.Config{
			Secret:       cfg.Session.Secret,
			TTL:          cfg.Session.TTL,
			CookieSecure: cfg.Session.CookieSecure,
		}, denylist, logger),
		Hasher: hasher,
		Storage: storage.NewSupabaseStore(storage.Config{
			BaseURL:    cfg.Storage.BaseURL,
			ServiceKey: cfg.Storage.ServiceKey,
			Bucket:     cfg.Storage.Bucket,
		}),
		Publisher:      publisher.NewEventPublisher(transport, logger),
		Metrics:        m,
		Logger:         logger,
		Health:         dbConn.HealthCheck,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.RequestTimeout + 5*time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return run(server, cfg.Server.ShutdownTimeout, logger)
}

// run serves until SIGINT or SIGTERM, then shuts down gracefully.
func run(server *http.Server, shutdownTimeout time.Duration, logger logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", server.Addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("Shutting down gracefully...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
