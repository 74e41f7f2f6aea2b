// Package server boots the storefront: the storage backend, the HTTP and
// gRPC listeners, queue workers and the scheduler.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emberwick/storefront/app/jobs"
	"github.com/emberwick/storefront/app/live"
	"github.com/emberwick/storefront/app/routes"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/config"
	"github.com/emberwick/storefront/database/seeders"
	"github.com/emberwick/storefront/pkg/cache"
	"github.com/emberwick/storefront/pkg/container"
	"github.com/emberwick/storefront/pkg/database"
	grpcserver "github.com/emberwick/storefront/pkg/grpc"
	"github.com/emberwick/storefront/pkg/logger"
	"github.com/emberwick/storefront/pkg/metrics"
	"github.com/emberwick/storefront/pkg/middleware"
	"github.com/emberwick/storefront/pkg/migration"
	"github.com/emberwick/storefront/pkg/notification"
	"github.com/emberwick/storefront/pkg/queue"
	"github.com/emberwick/storefront/pkg/reqid"
	"github.com/emberwick/storefront/pkg/router"
	"github.com/emberwick/storefront/pkg/schedule"
	"github.com/emberwick/storefront/pkg/session"
	"github.com/emberwick/storefront/pkg/storage"

	// Register migrations so `serve` can bring a fresh database up itself.
	_ "github.com/emberwick/storefront/database/migrations"
)

// Start boots everything and blocks until SIGINT/SIGTERM, then shuts the
// HTTP server down gracefully.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	attachMongoLog()

	if err := cache.Connect(); err != nil {
		logger.Warn("cache: redis unavailable, using in-process fallback", "error", err)
	} else {
		// Durable queue only when Redis is reachable.
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	storage.Connect()
	notification.SetSlackWebhook(config.Get("SLACK_WEBHOOK_URL", ""))

	st, err := buildStore()
	if err != nil {
		return err
	}
	container.Singleton("store", func() interface{} { return st })

	jobs.RegisterAll()
	live.Start()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.StartWorkers(ctx, 4)
	registerSchedule()
	schedule.Start(ctx)

	grpcSrv, _, err := grpcserver.Start(config.GRPCPort())
	if err != nil {
		return err
	}
	defer grpcserver.Stop(grpcSrv)

	handler, err := buildHandler(st)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("http: listening", "addr", srv.Addr, "env", config.AppEnv())

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStore picks the storage backend: DB_DRIVER=memory gets the seeded
// in-memory store, anything else opens the relational database, migrates
// and seeds it.
func buildStore() (store.Store, error) {
	if config.DatabaseDriver() == "memory" {
		mem := store.NewMemory()
		seedMemory(mem)
		logger.Info("store: using in-memory backend")
		return mem, nil
	}

	if err := database.Connect(); err != nil {
		return nil, err
	}
	if err := migration.New(database.DB).Run(); err != nil {
		return nil, err
	}
	if err := seeders.RunAll(database.DB); err != nil {
		return nil, err
	}
	return store.NewGorm(database.DB), nil
}

func seedMemory(mem store.Store) {
	ctx := context.Background()
	for _, p := range seeders.CatalogProducts() {
		product := p
		if err := mem.CreateProduct(ctx, &product); err != nil {
			logger.Warn("store: seed product", "name", p.Name, "error", err)
		}
	}
}

func buildHandler(st store.Store) (http.Handler, error) {
	r := router.New()
	r.Use(
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		metrics.Middleware(),
		middleware.CORS(middleware.DefaultCORSOptions()),
		session.Middleware(session.DefaultOptions()),
	)
	if err := routes.RegisterAPI(r, st); err != nil {
		return nil, err
	}
	return r.Handler(), nil
}

// registerSchedule wires the recurring jobs. Anonymous carts older than
// CART_TTL_DAYS are dropped nightly. The store is resolved through the
// container at run time, so a task always sees the live binding.
func registerSchedule() {
	schedule.Daily().Name("carts.purge").WithoutOverlapping().Run(func() {
		st := container.Make("store").(store.Store)
		cutoff := time.Now().AddDate(0, 0, -config.CartTTLDays())
		n, err := st.PurgeAnonymousCarts(context.Background(), cutoff)
		if err != nil {
			logger.Error("schedule: cart purge", "error", err)
			return
		}
		if n > 0 {
			logger.Info("schedule: purged stale anonymous carts", "count", n)
		}
	})
}

// attachMongoLog fans log records out to MongoDB when LOG_MONGO_URI is
// set. Failure to reach Mongo never blocks boot.
func attachMongoLog() {
	uri := config.LogMongoURI()
	if uri == "" {
		return
	}
	mh, err := logger.NewMongoHandler(uri, "emberwick", "logs")
	if err != nil {
		logger.Warn("logger: mongo sink unavailable", "error", err)
		return
	}
	logger.L = slog.New(logger.NewMultiHandler(logger.L.Handler(), mh))
	slog.SetDefault(logger.L)
}
