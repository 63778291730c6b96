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

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cardex-labs/cardex/adapters/directory"
	"github.com/cardex-labs/cardex/adapters/events"
	"github.com/cardex-labs/cardex/adapters/ledger"
	"github.com/cardex-labs/cardex/adapters/snapshot"
	"github.com/cardex-labs/cardex/adapters/tokenizer"
	"github.com/cardex-labs/cardex/adapters/verify"
	"github.com/cardex-labs/cardex/internal/config"
	"github.com/cardex-labs/cardex/internal/retry"
	"github.com/cardex-labs/cardex/ports"
	"github.com/cardex-labs/cardex/replay"
	"github.com/cardex-labs/cardex/service"
	"github.com/cardex-labs/cardex/swap"
	transport "github.com/cardex-labs/cardex/transport/http"
)

func main() {
	root := &cobra.Command{
		Use:   "cardexd",
		Short: "Wallet-authenticated swap quotation and settlement service",
	}
	root.AddCommand(serveCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accounts, publisher, err := newBackends(cfg, logger)
	if err != nil {
		return err
	}

	guard := replay.NewGuard(logger)
	go guard.Run(ctx)

	eventPub := events.NewWatermillPublisher(publisher)

	var authOpts []service.AuthOption
	if cfg.Auth.VerifySignatures {
		authOpts = append(authOpts, service.WithSignatureVerifier(verify.NewEthereumVerifier()))
		logger.Info("signature verification enabled")
	}
	authService := service.NewAuthService(
		guard,
		accounts,
		tokenizer.NewHMACTokenizer([]byte(cfg.Auth.SessionSecret)),
		eventPub,
		logger,
		authOpts...,
	)

	ledgerClient := ledger.NewClient(ledger.Config{
		BaseURL:   cfg.Ledger.BaseURL,
		ProjectID: cfg.Ledger.ProjectID,
		Timeout:   cfg.Ledger.RequestTimeout,
		Retry: retry.Options{
			MaxAttempts: cfg.Ledger.MaxRetries,
			BaseDelay:   200 * time.Millisecond,
			MaxDelay:    2 * time.Second,
		},
	}, logger)

	locator := swap.NewLocator(logger,
		ledgerClient,
		snapshot.New(cfg.Pools.SnapshotDir, logger),
	)

	swapService := service.NewSwapService(
		swap.NewResolver(),
		locator,
		ledgerClient,
		swap.NewSettlementBuilder(),
		eventPub,
		logger,
	)

	router := transport.SetupRouter(authService, swapService, transport.RouterConfig{
		SecureCookies: cfg.IsProduction(),
	}, logger)

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newBackends picks the storage and messaging backends. With a Redis URL the
// directory and event stream are durable; without one everything runs
// in-process, which suits local development.
func newBackends(cfg *config.Config, logger *zap.Logger) (ports.AccountDirectory, message.Publisher, error) {
	if cfg.Redis.URL == "" {
		logger.Info("no redis configured, using in-memory backends")
		pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		return directory.NewMemoryDirectory(), pubsub, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: client},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating redis publisher: %w", err)
	}

	return directory.NewRedisDirectory(client), publisher, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
