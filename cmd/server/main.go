package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/CampusPortal/internal/auth"
	"github.com/arzan03/CampusPortal/internal/config"
	"github.com/arzan03/CampusPortal/internal/db"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/mailer"
	"github.com/arzan03/CampusPortal/internal/ratelimit"
	"github.com/arzan03/CampusPortal/internal/repository"
	"github.com/arzan03/CampusPortal/internal/repository/memory"
	"github.com/arzan03/CampusPortal/internal/repository/mongostore"
	"github.com/arzan03/CampusPortal/internal/server"
	"github.com/arzan03/CampusPortal/internal/services"
	"github.com/arzan03/CampusPortal/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store   *repository.Store
		objects storage.ObjectStore
		client  *mongo.Client
	)
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err = db.ConnectMongoDB(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}()

		database := client.Database(cfg.Mongo.Database)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			return err
		}
		store = mongostore.NewStore(database)
		log.Info(ctx, "connected to MongoDB", "database", cfg.Mongo.Database)

		minioStore, err := storage.NewMinioStore(ctx, cfg.Minio, log)
		if err != nil {
			log.Warn(ctx, "object storage unavailable, note uploads disabled", "error", err)
		} else {
			objects = minioStore
		}
	default:
		store = memory.NewStore()
		objects = storage.NewMemoryStore(cfg.Minio.Bucket)
		log.Warn(ctx, "using in-memory store, data is lost on restart")
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn(ctx, "redis unavailable, using in-process rate limits", "error", err)
		} else {
			limiter = ratelimit.NewRedisLimiter(rdb)
		}
	}

	mail := mailer.New(cfg.Email, log)
	if mail.DemoMode() {
		log.Warn(ctx, "EMAIL_USER/EMAIL_PASS not set, OTP codes are logged instead of mailed")
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	svc := services.New(store, mail, limiter, tokens, objects, cfg.OTP, log)
	if cfg.AdminEmail != "" {
		svc.Auth.WithBootstrapAdmin(cfg.AdminEmail)
		promoted, err := svc.Users.BootstrapAdmin(ctx, cfg.AdminEmail)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if !promoted {
			log.Info(ctx, "bootstrap admin will be promoted once verified", "email", cfg.AdminEmail)
		}
	}

	app := server.NewApp(server.Deps{
		Store:          store,
		Services:       svc,
		Tokens:         tokens,
		Log:            log,
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      true,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}
