package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ssegota/daignostics/internal/config"
	"github.com/ssegota/daignostics/internal/domain/account"
	"github.com/ssegota/daignostics/internal/domain/doctor"
	"github.com/ssegota/daignostics/internal/domain/experiment"
	"github.com/ssegota/daignostics/internal/domain/patient"
	"github.com/ssegota/daignostics/internal/domain/report"
	"github.com/ssegota/daignostics/internal/platform/ai"
	"github.com/ssegota/daignostics/internal/platform/auth"
	"github.com/ssegota/daignostics/internal/platform/blobstore"
	"github.com/ssegota/daignostics/internal/platform/db"
	"github.com/ssegota/daignostics/internal/platform/metrics"
	"github.com/ssegota/daignostics/internal/platform/middleware"
	"github.com/ssegota/daignostics/internal/platform/predict"
)

// DoctorExistsAdapter adapts the doctor repository to the patient service's
// transfer validation interface, avoiding a cross-domain import.
type DoctorExistsAdapter struct {
	repo doctor.DoctorRepository
}

func (a *DoctorExistsAdapter) Exists(ctx context.Context, id uuid.UUID) bool {
	_, err := a.repo.GetByID(ctx, id)
	return err == nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "portal-server",
		Short: "dAIgnostics clinical portal API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(accountCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	return db.NewPool(ctx, db.PoolConfig{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the portal API server",
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

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
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

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
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
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage portal accounts",
	}

	createDoctorCmd := &cobra.Command{
		Use:   "create-doctor",
		Short: "Create a doctor account and profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			institutions, _ := cmd.Flags().GetStringSlice("institutions")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := openPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer,
				time.Duration(cfg.TokenTTLHours)*time.Hour)
			svc := account.NewService(
				account.NewAccountRepoPG(pool),
				doctor.NewDoctorRepoPG(pool),
				patient.NewPatientRepoPG(pool),
				issuer,
				pool,
			)

			a, d, err := svc.RegisterDoctor(ctx, username, email, password, name, institutions)
			if err != nil {
				return err
			}
			fmt.Printf("Created account %s with doctor profile %s\n", a.ID, d.ID)
			return nil
		},
	}
	createDoctorCmd.Flags().String("username", "", "Login username")
	createDoctorCmd.Flags().String("email", "", "Login email")
	createDoctorCmd.Flags().String("password", "", "Login password")
	createDoctorCmd.Flags().String("name", "", "Doctor's full name")
	createDoctorCmd.Flags().StringSlice("institutions", nil, "Affiliated institutions")

	cmd.AddCommand(createDoctorCmd)
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := openPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Report storage
	var store blobstore.Store
	switch cfg.StorageBackend {
	case "s3":
		store, err = blobstore.NewS3Store(ctx, cfg.ReportsBucket)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize S3 report storage")
		}
		logger.Info().Str("bucket", cfg.ReportsBucket).Msg("using S3 report storage")
	default:
		store = blobstore.NewMemoryStore()
		logger.Warn().Msg("using in-memory report storage; reports are lost on restart")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	m := metrics.New()

	// Global middleware
	e.Use(middleware.Recovery(logger, m.PanicsTotal))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(m.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		status := db.CheckHealth(c.Request().Context(), pool)
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, status)
	})

	// Prometheus scrape endpoint
	e.GET("/metrics", metrics.Handler())

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// Public routes: registration and login need no session.
	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))

	// Authenticated API. Auth runs before the rate limiter so sessions are
	// limited per account rather than per IP.
	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("development mode without JWT_SECRET; all requests run as admin")
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.JWTIssuer,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: signingKey(cfg),
		}))
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// -- Repositories --
	accountRepo := account.NewAccountRepoPG(pool)
	doctorRepo := doctor.NewDoctorRepoPG(pool)
	patientRepo := patient.NewPatientRepoPG(pool)
	experimentRepo := experiment.NewExperimentRepoPG(pool)
	reportRepo := report.NewReportRepoPG(pool)

	// -- External services --
	var predictor experiment.Predictor
	if cfg.PredictURL != "" {
		predictor = predict.NewClient(cfg.PredictURL,
			time.Duration(cfg.PredictTimeoutSeconds)*time.Second)
	} else {
		logger.Warn().Msg("PREDICT_URL not set; experiment uploads cannot request predictions")
	}
	analyzer := ai.NewClient(cfg.AIEndpoint, cfg.AIModel, cfg.AIAPIKey)

	// -- Services and handlers --
	issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer,
		time.Duration(cfg.TokenTTLHours)*time.Hour)

	accountSvc := account.NewService(accountRepo, doctorRepo, patientRepo, issuer, pool)
	account.NewHandler(accountSvc).RegisterRoutes(public, apiV1)

	doctorSvc := doctor.NewService(doctorRepo)
	doctor.NewHandler(doctorSvc).RegisterRoutes(apiV1)

	patientSvc := patient.NewService(patientRepo, &DoctorExistsAdapter{repo: doctorRepo})
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	experimentSvc := experiment.NewService(experimentRepo, predictor)
	experimentSvc.SetMetrics(m)
	experiment.NewHandler(experimentSvc, patientSvc).RegisterRoutes(apiV1)

	reportSvc := report.NewService(reportRepo, experimentSvc, patientSvc, doctorSvc,
		analyzer, store, cfg.ReportsPrefix,
		time.Duration(cfg.ReportURLTTLSeconds)*time.Second, logger)
	reportSvc.SetMetrics(m)
	report.NewHandler(reportSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + strings.TrimPrefix(cfg.Port, ":")
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func signingKey(cfg *config.Config) []byte {
	if cfg.JWTSecret == "" {
		return nil
	}
	return []byte(cfg.JWTSecret)
}
