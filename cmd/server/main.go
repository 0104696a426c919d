package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/shareit/internal/adapter/handler"
	"github.com/rl1809/shareit/internal/adapter/storage"
	"github.com/rl1809/shareit/internal/config"
	"github.com/rl1809/shareit/internal/core/service"
	"github.com/rl1809/shareit/internal/logger"
	"github.com/rl1809/shareit/internal/metrics"
	"github.com/rl1809/shareit/internal/port"
)

// store is what the booking service needs from a storage backend.
type store interface {
	port.BookingRepository
	port.UserDirectory
	port.ItemCatalog
}

func main() {
	flagSet := pflag.NewFlagSet("shareit", pflag.ExitOnError)
	configPath := flagSet.String("config", "", "path to a config file (default: ./config.yaml if present)")
	seed := flagSet.Bool("seed", false, "insert demo users and items on startup")
	flagSet.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(finish(log, run(cfg, *seed, log)))
}

// finish logs the outcome of run and flushes the logger before exit.
func finish(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("server failed", zap.Error(err))
		code = 1
	}
	log.Sync()
	return code
}

type closer struct {
	name  string
	close func() error
}

// closeAll closes resources in reverse order of opening and logs failures.
func closeAll(closers []closer, log *zap.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(); err != nil {
			log.Warn("close failed", zap.String("resource", closers[i].name), zap.Error(err))
		}
	}
	log.Info("connections closed")
}

func run(cfg config.Config, seed bool, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var closers []closer
	defer func() { closeAll(closers, log) }()

	// Initialize storage
	var (
		db      *sql.DB
		backend store
		seeder  seedTarget
	)
	switch cfg.StorageDriver {
	case "mysql":
		var err error
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("open mysql: %w", err)
		}
		closers = append(closers, closer{name: "mysql", close: db.Close})
		db.SetMaxOpenConns(cfg.MySQLMaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQLMaxIdleConns)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping mysql: %w", err)
		}
		log.Info("connected to mysql")

		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			return err
		}
		backend, seeder = mysqlAdapter, mysqlAdapter
	default:
		memoryAdapter := storage.NewMemoryAdapter()
		backend, seeder = memoryAdapter, memoryAdapter
		log.Info("using in-memory storage")
	}

	if seed {
		if err := seedDemo(ctx, seeder); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Info("seeded demo users and items")
	}

	// Initialize item locker
	var locker port.ItemLocker
	switch cfg.LockDriver {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: 100,
		})
		closers = append(closers, closer{name: "redis", close: rdb.Close})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		log.Info("connected to redis")
		locker = storage.NewRedisLocker(rdb, cfg.LockTTL, log)
	case "mysql":
		locker = storage.NewMySQLLocker(db, cfg.LockTTL, log)
	default:
		locker = storage.NewMemoryLocker()
	}

	bookingService := service.NewBookingService(backend, backend, backend, locker,
		service.WithMetrics(m),
		service.WithLogger(log),
	)

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterBookingServiceServer(grpcServer, handler.NewGRPCHandler(bookingService, log))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	go func() {
		log.Info("gRPC server listening", zap.String("port", cfg.GRPCPort))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	router := handler.NewRouter(handler.NewHTTPHandler(bookingService, log), handler.RouterConfig{
		Logger:            log,
		Metrics:           m,
		Gatherer:          reg,
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.AppPort))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	return nil
}
