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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Deeppati2005/hms/internal/config"
	"github.com/Deeppati2005/hms/internal/domain/account"
	"github.com/Deeppati2005/hms/internal/domain/admin"
	"github.com/Deeppati2005/hms/internal/domain/scheduling"
	"github.com/Deeppati2005/hms/internal/platform/auth"
	"github.com/Deeppati2005/hms/internal/platform/cache"
	"github.com/Deeppati2005/hms/internal/platform/db"
	"github.com/Deeppati2005/hms/internal/platform/telemetry"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Clinic appointment management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			migrator, closeFn, err := openMigrator(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer closeFn()

			count, err := migrator.Up(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			migrator, closeFn, err := openMigrator(cmd.Context(), dir)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := migrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func openMigrator(ctx context.Context, dir string) (*db.Migrator, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBSchema)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, dir).WithSchema(cfg.DBSchema), pool.Close, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg)

	ctx := context.Background()

	// Database
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBSchema)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Telemetry
	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		ServiceName:    "hms-server",
		ServiceVersion: version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.OTelSampleRate,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise telemetry")
	}
	if err := tel.RegisterPoolStats(func() (int32, int32) {
		stat := pool.Stat()
		return stat.AcquiredConns(), stat.IdleConns()
	}); err != nil {
		logger.Warn().Err(err).Msg("pool metrics not registered")
	}

	// Scheduling
	grid, err := scheduling.NewSlotGrid(cfg.DayStart, cfg.DayEnd, cfg.SlotMinutes)
	if err != nil {
		return fmt.Errorf("invalid slot grid: %w", err)
	}
	opts := scheduling.Options{
		Grid:             grid,
		Strict:           cfg.StrictStatus(),
		BookingGuard:     cfg.BookingGuard,
		ReleaseCancelled: cfg.ReleaseCancelled,
		Metrics:          tel,
	}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, slot cache disabled")
		} else {
			defer rdb.Close()
			opts.Cache = cache.NewRedisSlotCache(rdb, cfg.SlotCacheTTL, logger).WithPrefix(cfg.SlotCachePrefix)
			logger.Info().Msg("slot cache enabled")
		}
	}

	accountSvc := account.NewService(account.NewRepo(pool), auth.NewBcryptHasher(cfg.BcryptCost), cfg.StrictStatus())
	schedSvc := scheduling.NewService(scheduling.NewRepo(pool), db.NewTxRunner(pool), opts)
	adminSvc := admin.NewService(accountSvc, schedSvc)

	e, api := newServer(cfg, logger, tel)
	e.GET("/health/db", db.HealthHandler(pool))
	registerRoutes(api, accountSvc, schedSvc, adminSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(e, "hms-server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("telemetry shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
