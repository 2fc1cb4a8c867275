package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kinedesk/kinedesk/internal/config"
	"github.com/kinedesk/kinedesk/internal/domain/dashboard"
	"github.com/kinedesk/kinedesk/internal/domain/navigation"
	"github.com/kinedesk/kinedesk/internal/domain/patient"
	"github.com/kinedesk/kinedesk/internal/domain/session"
	"github.com/kinedesk/kinedesk/internal/domain/treatment"
	"github.com/kinedesk/kinedesk/internal/platform/db"
	"github.com/kinedesk/kinedesk/internal/platform/middleware"
	"github.com/kinedesk/kinedesk/internal/platform/querycache"
)

// sessionActivityAdapter adapts the session repository to the
// treatment.SessionLister interface, avoiding a circular import between the
// treatment and session packages.
type sessionActivityAdapter struct {
	repo session.Repository
}

func (a *sessionActivityAdapter) ActivityFor(ctx context.Context, treatmentIDs []int64) ([]treatment.SessionActivity, error) {
	rows, err := a.repo.ActivityFor(ctx, treatmentIDs)
	if err != nil {
		return nil, err
	}
	out := make([]treatment.SessionActivity, len(rows))
	for i, r := range rows {
		out[i] = treatment.SessionActivity{TreatmentID: r.TreatmentID, Performed: r.Performed, Paid: r.Paid}
	}
	return out, nil
}

// navDataSource feeds the drill-down from the domain services so reads go
// through the shared query cache.
type navDataSource struct {
	patients   *patient.Service
	treatments *treatment.Service
	sessions   *session.Service
}

func (d *navDataSource) Patients(ctx context.Context, search string) ([]navigation.PatientRow, error) {
	rows, _, err := d.patients.List(ctx, patient.ListQuery{Search: search})
	if err != nil {
		return nil, err
	}
	out := make([]navigation.PatientRow, len(rows))
	for i, p := range rows {
		out[i] = navigation.PatientRow{ID: p.ID, Name: p.FullName(), Phone: p.Phone}
	}
	return out, nil
}

func (d *navDataSource) Treatments(ctx context.Context, patientID int64) ([]navigation.TreatmentRow, error) {
	rows, _, err := d.treatments.List(ctx, treatment.ListQuery{PatientID: patientID})
	if err != nil {
		return nil, err
	}
	out := make([]navigation.TreatmentRow, len(rows))
	for i, t := range rows {
		out[i] = navigation.TreatmentRow{ID: t.ID, Diagnosis: t.Diagnosis, StartDate: t.StartDate, Status: string(t.Status)}
	}
	return out, nil
}

func (d *navDataSource) Sessions(ctx context.Context, treatmentID int64) ([]navigation.SessionRow, error) {
	rows, _, err := d.sessions.List(ctx, session.ListQuery{TreatmentID: treatmentID})
	if err != nil {
		return nil, err
	}
	out := make([]navigation.SessionRow, len(rows))
	for i, s := range rows {
		out[i] = navigation.SessionRow{ID: s.ID, Date: s.Date, Time: s.Time, Performed: s.Performed, Paid: s.Paid}
	}
	return out, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "kinedesk-server",
		Short: "Physiotherapy clinic records API server",
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
			flagDir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationsDir(flagDir, cfg))
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Migrations directory (overrides MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagDir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, migrationsDir(flagDir, cfg))
			statuses, err := migrator.Status(ctx)
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
	statusCmd.Flags().String("dir", "", "Migrations directory (overrides MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

// migrationsDir resolves the migrations path: an explicit --dir flag wins
// over the MIGRATIONS_DIR config value.
func migrationsDir(flagDir string, cfg *config.Config) string {
	if flagDir != "" {
		return flagDir
	}
	if cfg.MigrationsDir != "" {
		return cfg.MigrationsDir
	}
	return "migrations"
}

func runServer() error {
	// Bootstrap logger; re-shaped below once config is loaded.
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Logger per config: console writer in dev, level from LOG_LEVEL.
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		logger = logger.Level(lvl)
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Shared query cache: one instance, flushed on every write.
	cache := querycache.New(cfg.CacheTTL)

	// Repositories
	patientRepo := patient.NewRepo(pool)
	treatmentRepo := treatment.NewRepo(pool)
	sessionRepo := session.NewRepo(pool)

	// Services
	patientSvc := patient.NewService(patientRepo, cache, logger)
	treatmentSvc := treatment.NewService(treatmentRepo, &sessionActivityAdapter{repo: sessionRepo}, cache, logger)
	sessionSvc := session.NewService(sessionRepo, cache, logger)
	dashboardSvc := dashboard.NewService(patientRepo, treatmentRepo, sessionRepo, cache, logger)
	navMgr := navigation.NewManager(&navDataSource{
		patients:   patientSvc,
		treatments: treatmentSvc,
		sessions:   sessionSvc,
	}, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// API group
	api := e.Group("/api")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Routes
	patient.NewHandler(patientSvc).RegisterRoutes(api)
	treatment.NewHandler(treatmentSvc).RegisterRoutes(api)
	session.NewHandler(sessionSvc).RegisterRoutes(api)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(api)
	navigation.NewHandler(navMgr).RegisterRoutes(api)

	// Health checks
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/healthz/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
