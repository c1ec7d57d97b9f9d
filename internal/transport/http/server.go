package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lucho20091/firebase-next/internal/config"
	"github.com/lucho20091/firebase-next/internal/database"
	"github.com/lucho20091/firebase-next/internal/firebase"
	"github.com/lucho20091/firebase-next/internal/handler"
	"github.com/lucho20091/firebase-next/internal/logging"
	"github.com/lucho20091/firebase-next/internal/queue"
	"github.com/lucho20091/firebase-next/internal/repository"
	"github.com/lucho20091/firebase-next/internal/service"
	authmw "github.com/lucho20091/firebase-next/internal/transport/http/middleware"
	"github.com/lucho20091/firebase-next/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Run wires every component from the environment and serves until SIGINT or
// SIGTERM.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Firebase, when any component needs it
	var app *firebase.App
	if cfg.StoreBackend == config.StoreFirestore || cfg.AuthMode == config.AuthFirebase || cfg.FirebaseConfigured() {
		app, err = firebase.NewApp(ctx, firebase.Credentials{
			ProjectID:   cfg.FirebaseProjectID,
			ClientEmail: cfg.FirebaseClientEmail,
			PrivateKey:  cfg.FirebasePrivateKey,
		})
		if err != nil {
			return err
		}
		log.Info("firebase initialized", zap.String("project", app.ProjectID()))
	}

	// 3. Post store
	posts, closeStore, err := openPostRepository(ctx, cfg, app, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// 4. Events and notification workers (optional)
	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		publisher = queue.NewPublisher(rdb, log)

		if app != nil {
			messaging, err := app.Messaging(ctx)
			if err != nil {
				return err
			}
			notifyHandler := worker.NewHandler(posts, service.NewFCMNotifier(messaging, log), log)
			mgr := worker.NewManager(queue.NewConsumer(rdb, log), notifyHandler, worker.ManagerConfig{
				WorkerCount: cfg.WorkerCount,
			}, log)
			if err := mgr.Start(ctx); err != nil {
				return fmt.Errorf("start workers: %w", err)
			}
			defer mgr.Stop()
		} else {
			log.Warn("firebase not configured, notification workers disabled")
		}
	}

	// 5. Identity
	var verifier authmw.TokenVerifier
	switch cfg.AuthMode {
	case config.AuthJWT:
		verifier = authmw.NewHMACVerifier(cfg.JWTSecret)
	default:
		authClient, err := app.Auth(ctx)
		if err != nil {
			return err
		}
		verifier = authmw.NewFirebaseVerifier(authClient)
	}

	// 6. Media storage (optional)
	var uploader handler.MediaUploader
	if cfg.StorageConfigured() {
		mediaService, err := service.NewMediaService(ctx, cfg, log)
		if err != nil {
			return err
		}
		uploader = mediaService
	} else {
		log.Warn("R2 not configured, media uploads disabled")
	}

	// 7. HTTP
	router := NewRouter(RouterConfig{
		CommentHandler: handler.NewCommentHandler(service.NewCommentService(posts, publisher, log), cfg.DefaultAvatarURL, log),
		PostHandler:    handler.NewPostHandler(service.NewPostService(posts, publisher, log), cfg.DefaultAvatarURL, log),
		MediaHandler:   handler.NewMediaHandler(uploader, log),
		Verifier:       verifier,
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreBackend))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openPostRepository selects the store named by STORE_BACKEND. The returned
// func releases its connections.
func openPostRepository(ctx context.Context, cfg *config.Config, app *firebase.App, log *zap.Logger) (repository.PostRepository, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.Connect(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewPostgresPostRepository(db), func() { db.Close() }, nil

	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryPostRepository(), func() {}, nil

	default:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewFirestorePostRepository(client, cfg.FirestoreCollection), func() { client.Close() }, nil
	}
}

// openRedis builds the shared pool from a redis:// URL, e.g.
// redis://:password@localhost:6379/0, and fails fast when Redis is unreachable.
func openRedis(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
