package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/otcheredev/hospital-visitor-access/internal/cache"
	"github.com/otcheredev/hospital-visitor-access/internal/config"
	"github.com/otcheredev/hospital-visitor-access/internal/database"
	"github.com/otcheredev/hospital-visitor-access/internal/events"
	"github.com/otcheredev/hospital-visitor-access/internal/handlers"
	"github.com/otcheredev/hospital-visitor-access/internal/middleware"
	"github.com/otcheredev/hospital-visitor-access/internal/services"
	"github.com/otcheredev/hospital-visitor-access/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "visitor-access",
		Short: "Hospital guest pass verification service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(completeSessionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, initializes logging and connects to the database
func setup(autoMigrate bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	dbConfig := database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		LogLevel:        cfg.Database.LogLevel,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		AutoMigrate:     autoMigrate,
	}
	if err := database.Connect(dbConfig); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, nil
}

func newCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Cache.Enabled && cfg.Cache.Type == "redis" {
		c, err := cache.NewRedisCache(cache.RedisOptions{
			Addr:      cfg.Redis.Addr(),
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("Redis cache initialized")
		return c, nil
	}

	if !cfg.Cache.Enabled {
		log.Info().Msg("Cache disabled, using memory cache as fallback")
	} else {
		log.Info().Msg("Memory cache initialized")
	}
	return cache.NewMemoryCache(cfg.Cache.SweepInterval), nil
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.NATS.URL == "" {
		return events.NoopPublisher{}
	}
	pub, err := events.NewNATSPublisher(cfg.NATS.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Event publishing disabled")
		return events.NoopPublisher{}
	}
	log.Info().Str("url", cfg.NATS.URL).Msg("NATS publisher initialized")
	return pub
}

func newAccessService(cfg *config.Config, c cache.Cache, pub events.Publisher) (*services.AccessService, error) {
	loc, err := cfg.DefaultLocation()
	if err != nil {
		return nil, err
	}
	return services.NewAccessService(services.NewStores(), c, pub,
		services.WithDefaultLocation(loc),
		services.WithIdempotencyTTL(cfg.Access.IdempotencyTTL),
	), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(true)
			if err != nil {
				return err
			}
			defer database.Close()

			log.Info().Msg("Starting visitor access service")

			cacheImpl, err := newCache(cfg)
			if err != nil {
				return err
			}
			defer cacheImpl.Close()

			publisher := newPublisher(cfg)
			defer publisher.Close()

			accessService, err := newAccessService(cfg, cacheImpl, publisher)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
				Handler:      newRouter(cfg, accessService, cacheImpl),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("Server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-quit:
			}

			log.Info().Msg("Shutting down server...")

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			log.Info().Msg("Server stopped")
			return nil
		},
	}
}

func newRouter(cfg *config.Config, accessService *services.AccessService, c cache.Cache) http.Handler {
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Checker{
		"database": database.Ping,
		"cache":    c.Ping,
	})
	accessHandler := handlers.NewAccessHandler(accessService)
	managementHandler := handlers.NewManagementHandler(accessService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints (no authentication required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Auth.JWTSecret))
		r.Use(middleware.TenantID)

		r.Post("/guest-passes/verify", accessHandler.Verify)
		r.Post("/guest-passes/complete", accessHandler.Complete)
		r.Get("/guest-passes/{id}/logs", accessHandler.GetLogs)

		r.Get("/visiting-hours", managementHandler.GetVisitingHours)
		r.Post("/visiting-hours", managementHandler.CreateVisitingHours)

		r.Get("/audit-logs", managementHandler.GetAuditLogs)
	})

	return r
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(true); err != nil {
				return err
			}
			defer database.Close()

			fmt.Println("Migrations applied successfully.")
			return nil
		},
	}
}

func completeSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete-session",
		Short: "Check out every guest of a patient session and expire their passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			hospital, _ := cmd.Flags().GetString("hospital")
			session, _ := cmd.Flags().GetString("session")
			notes, _ := cmd.Flags().GetString("notes")

			hospitalID, err := uuid.Parse(hospital)
			if err != nil {
				return fmt.Errorf("--hospital must be a UUID: %w", err)
			}
			sessionID, err := uuid.Parse(session)
			if err != nil {
				return fmt.Errorf("--session must be a UUID: %w", err)
			}

			cfg, err := setup(false)
			if err != nil {
				return err
			}
			defer database.Close()

			publisher := newPublisher(cfg)
			defer publisher.Close()

			accessService, err := newAccessService(cfg, nil, publisher)
			if err != nil {
				return err
			}

			res, err := accessService.CompleteGuests(cmd.Context(), hospitalID, nil, services.CompletionRequest{
				SessionID: &sessionID,
				Notes:     notes,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Checked out %d guest(s), completed %d pass(es).\n", res.CheckedOut, res.Completed)
			return nil
		},
	}
	cmd.Flags().String("hospital", "", "Hospital (tenant) ID")
	cmd.Flags().String("session", "", "Patient session ID")
	cmd.Flags().String("notes", "", "Note written on closed visits")
	return cmd
}
