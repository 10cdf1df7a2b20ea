// Package server boots the platform: configuration, MongoDB, Redis, storage,
// background workers, the HTTP API, and the gRPC health listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arthomesoni/arthome/app/jobs"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/routes"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/config"
	"github.com/arthomesoni/arthome/database/migrations"
	"github.com/arthomesoni/arthome/pkg/cache"
	"github.com/arthomesoni/arthome/pkg/database"
	"github.com/arthomesoni/arthome/pkg/grpcserver"
	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/metrics"
	"github.com/arthomesoni/arthome/pkg/middleware"
	"github.com/arthomesoni/arthome/pkg/queue"
	"github.com/arthomesoni/arthome/pkg/reqid"
	"github.com/arthomesoni/arthome/pkg/router"
	"github.com/arthomesoni/arthome/pkg/schedule"
	"github.com/arthomesoni/arthome/pkg/storage"
	"github.com/arthomesoni/arthome/pkg/ws"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	queueWorkers    = 4
	shutdownTimeout = 15 * time.Second
	rateLimitMax    = 200
	rateLimitWindow = time.Minute
)

// Start boots everything and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("server: config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Connect(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	if err := migrations.Run(ctx); err != nil {
		return err
	}

	// WARN+ records are mirrored into the app_logs collection.
	mongoHandler := logger.NewMongoHandler(database.Collection(database.ColAppLogs), slog.LevelWarn)
	logger.AttachHandler(mongoHandler)
	defer mongoHandler.Close()

	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, caching and redis queue disabled", "error", err)
	}
	defer cache.Close()

	storage.Connect()

	// Queue: redis-backed when available so jobs survive restarts, in-memory
	// otherwise. Failed jobs land in Mongo either way.
	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB, "arthome:queue:default"))
	}
	queue.UseCollection(database.Collection("failed_jobs"))
	jobs.RegisterAll()
	queue.StartWorkers(ctx, queueWorkers)

	hub := ws.NewHub()
	go hub.Run()
	jobs.RegisterListeners(hub)

	registerSchedules(ctx)
	schedule.Start(ctx)

	r := buildRouter(hub)

	httpSrv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv, err := grpcserver.Start(config.GRPCPort(), mongoPing)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpSrv.Addr, "env", config.AppEnv())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return fmt.Errorf("server: http: %w", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	grpcserver.Stop(grpcSrv)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// buildRouter assembles the middleware stack and the route table.
func buildRouter(hub *ws.Hub) *router.Router {
	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(rateLimitMax, rateLimitWindow),
	)
	routes.RegisterAPI(r, hub)
	return r
}

// registerSchedules sets up the recurring jobs.
func registerSchedules(ctx context.Context) {
	promos := services.NewPromoService(repositories.NewPromoRepository())
	schedule.Hourly().Name("promo:prune").WithoutOverlapping().Run(func() {
		if _, err := promos.PruneExpired(ctx); err != nil {
			logger.Error("schedule: promo prune", "error", err)
		}
	})
}

// mongoPing is the gRPC health check for the database dependency.
func mongoPing(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return database.DB.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
