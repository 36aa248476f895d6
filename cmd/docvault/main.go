package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/docvault/internal/companycache"
	"github.com/xxxsen/docvault/internal/config"
	"github.com/xxxsen/docvault/internal/db"
	"github.com/xxxsen/docvault/internal/filestore"
	"github.com/xxxsen/docvault/internal/handler"
	"github.com/xxxsen/docvault/internal/metrics"
	"github.com/xxxsen/docvault/internal/middleware"
	"github.com/xxxsen/docvault/internal/otel"
	"github.com/xxxsen/docvault/internal/pkg/jwt"
	"github.com/xxxsen/docvault/internal/repo"
	"github.com/xxxsen/docvault/internal/service"
)

func main() {
	var (
		configPath string
		envFile    string
	)

	rootCmd := &cobra.Command{
		Use:   "docvault",
		Short: "docvault share link server",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "optional dotenv file loaded before the config")

	load := func() (*config.Config, error) {
		if configPath == "" {
			return nil, fmt.Errorf("--config is required")
		}
		if err := config.LoadEnvFile(envFile); err != nil {
			return nil, err
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logger.Init(
			cfg.LogConfig.File,
			cfg.LogConfig.Level,
			int(cfg.LogConfig.FileCount),
			int(cfg.LogConfig.FileSize),
			int(cfg.LogConfig.KeepDays),
			cfg.LogConfig.Console,
		)
		logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
		return cfg, nil
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docvault server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer func() { _ = conn.Close() }()
			if err := db.ApplyMigrations(cmd.Context(), conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer func() { _ = conn.Close() }()
			if err := db.ApplyMigrations(cmd.Context(), conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			logutil.GetLogger(cmd.Context()).Info("migrations applied")
			return nil
		},
	}

	var (
		tokenUserID int64
		tokenEmail  string
		tokenTTL    time.Duration
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "mint a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if tokenUserID <= 0 {
				return fmt.Errorf("--user-id must be positive")
			}
			ttl := tokenTTL
			if ttl <= 0 {
				ttl = time.Duration(cfg.JWTTTLHours) * time.Hour
			}
			token, err := jwt.GenerateToken(tokenUserID, tokenEmail, []byte(cfg.JWTSecret), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	tokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 0, "user id claim")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime, defaults to jwt_ttl_hours")

	rootCmd.AddCommand(runCmd, migrateCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
		zap.Bool("tracing", cfg.Tracing.Enabled),
	)

	shutdownTracing, err := otel.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logutil.GetLogger(shutdownCtx).Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	companies := companycache.Wrap(
		repo.NewCompanyRepo(conn),
		cfg.Cache.CompanySize,
		time.Duration(cfg.Cache.CompanyTTLSeconds)*time.Second,
	)
	shareService := service.NewShareService(service.ShareDeps{
		Shares:    repo.NewShareRepo(conn),
		Documents: repo.NewDocumentRepo(conn),
		Folders:   repo.NewFolderRepo(conn),
		Companies: companies,
		Users:     repo.NewUserRepo(conn),
		Files:     store,
		Metrics:   appMetrics,
		BaseURL:   cfg.Share.BaseURL,
	})

	deps := handler.RouterDeps{
		Shares:           handler.NewShareHandler(shareService, cfg.Share.MaxExpiresInMinutes),
		Health:           handler.NewHealthHandler(),
		Metrics:          promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ResolveRateLimit: cfg.Share.ResolveRateLimit,
		JWTSecret:        []byte(cfg.JWTSecret),
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			appMetrics.Middleware(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", addr))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
