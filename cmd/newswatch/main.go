package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"

	"github.com/NewsFeedClient/cmd/newswatch/factory"
	"github.com/NewsFeedClient/internal/app"
	"github.com/NewsFeedClient/internal/infra/tracing"
	transport "github.com/NewsFeedClient/internal/transport/http"
	"github.com/NewsFeedClient/pkg/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	fx.New(
		fx.Provide(
			// Config
			config.Load,

			// Infrastructure
			factory.NewCacheStore,

			// Providers
			factory.NewProvider,

			// Services
			factory.NewNewsService,
			factory.NewWatcher,

			// HTTP Server
			transport.NewHTTPServer,
		),
		fx.Invoke(
			SetupTracer,
			WaitForReady, // Block until the backend answers health checks
			RegisterHooks,
			StartServer,
		),
	).Run()
}

// --- Invokers ---

func RegisterHooks(lc fx.Lifecycle, watcher *app.Watcher) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			watcher.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}

func SetupTracer(lc fx.Lifecycle, cfg *config.Config) error {
	if !cfg.TracingEnabled {
		slog.Info("Tracing disabled")
		return nil
	}

	ctx := context.Background()
	shutdown, err := tracing.InitTracer(ctx, "newswatch", cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("Failed to initialize tracer", "error", err)
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Info("Shutting down tracer provider")
			return shutdown(ctx)
		},
	})
	return nil
}

// WaitForReady blocks until the news backend is ready. With the mock
// provider there is no backend to wait for.
func WaitForReady(cfg *config.Config) error {
	if cfg.UseMockNews {
		slog.Info("Using mock news provider, skipping backend checks")
		return nil
	}

	ctx := context.Background()
	waiter := app.NewReadinessWaiter(cfg.NewsAPIURL, cfg.AuthAPIURL)
	return waiter.WaitForDependencies(ctx)
}

func StartServer(lc fx.Lifecycle, server *http.Server) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				slog.Info("Starting ops server", "address", server.Addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("HTTP server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
