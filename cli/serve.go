package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blogem/contacts/authenticator"
	"github.com/blogem/contacts/config"
	"github.com/blogem/contacts/controllers"
	"github.com/blogem/contacts/database"
	"github.com/blogem/contacts/services"
)

const shutdownTimeout = 10 * time.Second

// Flag variables for serve command
var (
	servePort     string
	serveDBPath   string
	servePageSize int
	serveLogLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server. Pending migrations are applied on startup.

Flags override the config file and environment:
  --port, -p       Listen port
  --db             SQLite database path
  --page-size      Default page size of listings
  --log-level      debug, info, warn or error`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "SQLite database path")
	serveCmd.Flags().IntVar(&servePageSize, "page-size", 0, "default page size")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "log level")
	RootCmd.AddCommand(serveCmd)
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Port = servePort
	}
	if flags.Lookup("db") != nil && flags.Changed("db") {
		cfg.DatabasePath = serveDBPath
	}
	if flags.Lookup("page-size") != nil && flags.Changed("page-size") {
		cfg.PageSize = servePageSize
	}
	if flags.Lookup("log-level") != nil && flags.Changed("log-level") {
		cfg.LogLevel = serveLogLevel
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.InitializeDatabase(ctx, cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	srvs := services.NewServices(db, services.Options{PageSize: cfg.PageSize, MaxPageSize: cfg.MaxPageSize}, log)
	sessions := authenticator.NewSessionManager(cfg.SessionSecret, cfg.SessionLifetime, cfg.UseHTTPS)

	ctrl, err := controllers.NewControllers(srvs, db, sessions, log)
	if err != nil {
		return fmt.Errorf("failed to initialize controllers: %w", err)
	}

	opts := controllers.RouterOptions{Sessions: sessions, RequestTimeout: cfg.RequestTimeout}
	if cfg.AuthEnabled() {
		opts.Provider, err = authenticator.NewOpenIDProvider(ctx, authenticator.OpenIDConfig{
			IssuerURL:    cfg.OIDCIssuerURL,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			CallbackURL:  cfg.OIDCCallbackURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize OpenID provider: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           controllers.NewRouter(ctrl, opts, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("database", cfg.DatabasePath),
			zap.Bool("auth", cfg.AuthEnabled()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
