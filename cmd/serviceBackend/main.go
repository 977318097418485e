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

	"github.com/freshxpress/dashboard/internal/crypto"
	"github.com/freshxpress/dashboard/internal/stub"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

var (
	addr     string
	seedPath string
	keyFile  string
	tokenTTL time.Duration
	verbose  bool
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "serviceBackend",
	Short: "Local stand-in for the FreshXpress backend API",
	Long: `Serves /api/auth/login and /api/farmers from memory so the dashboard
and the CLI can be run without the real backend. Accounts and farmers come
from a YAML seed file, or a small built-in fixture when none is given.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	rootCmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file with accounts and farmers")
	rootCmd.Flags().StringVar(&keyFile, "key", "master.key", "hex key used to sign tokens; a random key is used if unreadable")
	rootCmd.Flags().DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "lifetime of issued tokens")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	secret, err := crypto.ReadMasterKey(keyFile)
	if err != nil {
		logger.Warn("no signing key, using a random one; tokens will not survive a restart", zap.Error(err))
		if secret, err = crypto.GenerateMasterKey(); err != nil {
			return err
		}
	}

	backend := stub.New(secret, logger.Named("stub"))
	backend.SetTokenTTL(tokenTTL)
	seed := stub.DefaultSeed()
	if seedPath != "" {
		if seed, err = stub.LoadSeed(seedPath); err != nil {
			return err
		}
	}
	if err := seed.Apply(backend); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           backend,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("stub backend listening",
			zap.String("addr", addr),
			zap.Int("accounts", len(seed.Accounts)),
			zap.Int("farmers", len(seed.Farmers)))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
