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

	"github.com/freshxpress/dashboard/internal/api"
	"github.com/freshxpress/dashboard/internal/apiclient"
	"github.com/freshxpress/dashboard/internal/auth"
	"github.com/freshxpress/dashboard/internal/certs"
	"github.com/freshxpress/dashboard/internal/crypto"
	"github.com/freshxpress/dashboard/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const certWarnWindow = 30 * 24 * time.Hour

var (
	configPath string
	addr       string
	backendURL string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "FreshXpress admin dashboard",
	Long: `Serves the FreshXpress admin dashboard.

The dashboard signs administrators in against the backend API, keeps the
bearer token in an encrypted HttpOnly cookie and renders the farmer pages
server-side.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	rootCmd.Flags().StringVar(&backendURL, "backend", "", "backend API base URL (overrides config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if env := os.Getenv("FRESHXPRESS_CONFIG"); env != "" && !cmd.Flags().Changed("config") {
		configPath = env
	}
	cfg, err := utils.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if backendURL != "" {
		cfg.Backend.BaseURL = backendURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	master, err := crypto.ReadMasterKey(cfg.Session.MasterKeyFile)
	if err != nil {
		return fmt.Errorf("load master key: %w", err)
	}
	hashKey, blockKey, err := crypto.DeriveCookieKeys(master)
	if err != nil {
		return fmt.Errorf("derive cookie keys: %w", err)
	}
	manager := auth.NewManager(auth.NewCookieStore(hashKey, blockKey, cfg.Session), cfg.Session.CookieName, logger.Named("session"))

	client := apiclient.New(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout}, logger.Named("backend"))
	handler, err := api.NewHandler(client, manager, cfg.Map, logger.Named("http"))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	useTLS := cfg.Server.TLSCert != ""
	if useTLS {
		cm := certs.NewCertManager(cfg.Server.TLSCert, cfg.Server.TLSKey)
		tlsCfg, leaf, err := cm.TLSConfig()
		if err != nil {
			return fmt.Errorf("load TLS certificate: %w", err)
		}
		if cm.ExpiresWithin(leaf, certWarnWindow) {
			logger.Warn("TLS certificate expires soon", zap.Time("not_after", leaf.NotAfter))
		}
		srv.TLSConfig = tlsCfg
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("dashboard listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("tls", useTLS),
			zap.String("backend", client.BaseURL()))
		var err error
		if useTLS {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
