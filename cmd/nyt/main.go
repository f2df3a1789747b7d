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

	"github.com/AaronDeluna/new-york-times/internal/cache"
	"github.com/AaronDeluna/new-york-times/internal/config"
	"github.com/AaronDeluna/new-york-times/internal/server"
	"github.com/AaronDeluna/new-york-times/internal/service"
	"github.com/AaronDeluna/new-york-times/internal/store"
	"github.com/AaronDeluna/new-york-times/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    = config.Default()
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nyt",
	Short: "nyt - a cached news article service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		var err error
		logger, err = cfg.NewLogger()
		return err
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		var c cache.Cache
		if cfg.CacheEnabled {
			c = cache.NewStore(cache.NewMetrics(reg))
		}
		svc := service.NewArticleService(st, c, logger)

		srv := server.NewServer(svc, logger,
			server.WithImporter(worker.NewImporter(svc, logger)),
			server.WithGatherer(reg),
		)

		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("Goodbye!")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the fixture articles into the hybrid store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHybrid(cmd.Name()); err != nil {
			return err
		}
		st, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Seed(cmd.Context(), st, cfg.SeedCount); err != nil {
			return err
		}
		logger.Info("Seeded articles", zap.Int("count", cfg.SeedCount))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [url]",
	Short: "Create an article from a web page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireHybrid(cmd.Name()); err != nil {
			return err
		}
		st, closeStore, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		svc := service.NewArticleService(st, nil, logger)
		article, err := worker.NewImporter(svc, logger).Import(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(article)
		return nil
	},
}

// requireHybrid rejects commands whose writes would vanish with the
// process-local memory store.
func requireHybrid(command string) error {
	if cfg.Store != config.StoreHybrid {
		return fmt.Errorf("%s needs --store=hybrid; the memory store lives only as long as the server", command)
	}
	return nil
}

// openStore builds the configured store. The memory store starts seeded.
func openStore(ctx context.Context) (store.Store, func(), error) {
	switch cfg.Store {
	case config.StoreHybrid:
		st, err := store.NewHybridStore(cfg.RedisAddr, cfg.BadgerPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init store: %w", err)
		}
		gcCtx, cancel := context.WithCancel(ctx)
		go st.RunGC(gcCtx, cfg.GCInterval, logger)
		return st, func() {
			cancel()
			st.Close()
		}, nil
	default:
		st := store.NewMemoryStore()
		if err := store.Seed(ctx, st, cfg.SeedCount); err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	}
}

func init() {
	cfg.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
