package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type ReadinessWaiter struct {
	newsURL string
	authURL string
	client  *http.Client
}

func NewReadinessWaiter(newsURL, authURL string) *ReadinessWaiter {
	return &ReadinessWaiter{
		newsURL: newsURL,
		authURL: authURL,
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func (w *ReadinessWaiter) WaitForDependencies(ctx context.Context) error {
	if err := w.waitFor(ctx, "news API", w.newsURL); err != nil {
		return err
	}
	if w.authURL == "" || w.authURL == w.newsURL {
		return nil
	}
	return w.waitFor(ctx, "auth API", w.authURL)
}

func (w *ReadinessWaiter) waitFor(ctx context.Context, name, baseURL string) error {
	slog.Info("Waiting for backend...", "backend", name, "url", baseURL)
	// We use a ticker to poll for readiness every 2 seconds.
	// We do not use a timeout here because the service should wait indefinitely (or until context cancel)
	// rather than crashing if dependencies are slow to start (e.g. in dev environment).
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.checkHealth(ctx, baseURL); err != nil {
				slog.Warn("Backend not ready yet", "backend", name, "error", err)
				continue
			}
			slog.Info("Backend is ready", "backend", name)
			return nil
		}
	}
}

func (w *ReadinessWaiter) checkHealth(ctx context.Context, baseURL string) error {
	url := strings.TrimSuffix(baseURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
