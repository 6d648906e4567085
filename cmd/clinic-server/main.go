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

	"github.com/dentora/dentora/internal/config"
	"github.com/dentora/dentora/internal/domain/appointment"
	"github.com/dentora/dentora/internal/domain/billing"
	"github.com/dentora/dentora/internal/domain/dashboard"
	"github.com/dentora/dentora/internal/domain/document"
	"github.com/dentora/dentora/internal/domain/financial"
	"github.com/dentora/dentora/internal/domain/invitation"
	"github.com/dentora/dentora/internal/domain/medicalrecord"
	"github.com/dentora/dentora/internal/domain/odontogram"
	"github.com/dentora/dentora/internal/domain/patient"
	"github.com/dentora/dentora/internal/domain/tenancy"
	"github.com/dentora/dentora/internal/platform/auth"
	"github.com/dentora/dentora/internal/platform/blobstore"
	"github.com/dentora/dentora/internal/platform/db"
	"github.com/dentora/dentora/internal/platform/middleware"
	"github.com/dentora/dentora/pkg/envelope"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Dental clinic management API server",
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

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
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
	upCmd.Flags().String("dir", "", "Path to migrations directory")
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
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
	statusCmd.Flags().String("dir", "", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

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
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = envelope.ErrorHandler

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// API groups. The public group carries the health check and the Stripe
	// webhook; everything else requires a session, and the tenant group
	// additionally resolves the caller's clinic.
	public := e.Group("/api/v1")
	authed := e.Group("/api/v1", auth.JWTMiddleware(cfg.JWTSecret))

	public.GET("/health", db.HealthHandler(pool))

	// Repositories
	tenantRepo := tenancy.NewTenantRepoPG(pool)
	memberRepo := tenancy.NewMembershipRepoPG(pool)
	invitationRepo := invitation.NewRepoPG(pool)
	patientRepo := patient.NewRepoPG(pool)
	appointmentRepo := appointment.NewRepoPG(pool)
	recordRepo := medicalrecord.NewRepoPG(pool)
	documentRepo := document.NewRepoPG(pool)
	odontogramRepo := odontogram.NewRepoPG(pool)
	transactionRepo := financial.NewRepoPG(pool)
	subscriptionRepo := billing.NewSubscriptionRepoPG(pool)
	statsRepo := dashboard.NewStatsRepoPG(pool)

	// Cross-repo writes run inside one database transaction.
	txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	// Document blobs live in process memory. Swap for an S3-backed store
	// before multi-instance deployment.
	store := blobstore.NewInMemoryBlobStore(cfg.AppURL + "/api/v1/documents")

	// Services
	tenancySvc := tenancy.NewService(tenantRepo, memberRepo, txRunner, logger)
	invitationSvc := invitation.NewService(invitationRepo, memberRepo, tenantRepo, txRunner, logger)
	patientSvc := patient.NewService(patientRepo, tenantRepo)
	appointmentSvc := appointment.NewService(appointmentRepo, patientRepo, txRunner)
	recordSvc := medicalrecord.NewService(recordRepo, patientRepo)
	documentSvc := document.NewService(documentRepo, patientRepo, tenantRepo, store, logger)
	odontogramSvc := odontogram.NewService(odontogramRepo, patientRepo)
	financialSvc := financial.NewService(transactionRepo, patientRepo)
	billingSvc := billing.NewService(subscriptionRepo, tenantRepo,
		patientRepo, documentRepo, memberRepo,
		billing.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			AppURL:        cfg.AppURL,
			PriceIDs: map[tenancy.Plan]string{
				tenancy.PlanPro: cfg.StripePricePro,
			},
		}, logger)
	dashboardSvc := dashboard.NewService(statsRepo)

	tenant := authed.Group("", tenancy.RequireTenant(tenancySvc, cfg.CookieSecure))

	// Handlers
	tenancy.NewHandler(tenancySvc, cfg.CookieSecure).RegisterRoutes(authed, tenant)
	invitation.NewHandler(invitationSvc).RegisterRoutes(authed, tenant)
	patient.NewHandler(patientSvc).RegisterRoutes(tenant)
	appointment.NewHandler(appointmentSvc).RegisterRoutes(tenant)
	medicalrecord.NewHandler(recordSvc).RegisterRoutes(tenant)
	document.NewHandler(documentSvc).RegisterRoutes(tenant)
	odontogram.NewHandler(odontogramSvc).RegisterRoutes(tenant)
	financial.NewHandler(financialSvc).RegisterRoutes(tenant)
	dashboard.NewHandler(dashboardSvc).RegisterRoutes(tenant)

	billingHandler := billing.NewHandler(billingSvc)
	billingHandler.RegisterRoutes(tenant)
	billingHandler.RegisterWebhook(public)

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.StartServer(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
