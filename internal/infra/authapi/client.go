// Package authapi implements the account client for the backend's auth
// and profile endpoints.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/pkg/config"
)

// HTTPError is returned for non-2xx auth responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("auth api error: status %d: %s", e.StatusCode, e.Body)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

type tokenPayload struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *domain.User `json:"user,omitempty"`
}

func (p tokenPayload) toToken() *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  p.Token,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
	}
	if p.ExpiresIn > 0 {
		t.Expiry = time.Now().Add(time.Duration(p.ExpiresIn) * time.Second)
	}
	return t
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.AuthAPIURL, "/"),
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*oauth2.Token, *domain.User, error) {
	body := map[string]string{"email": email, "password": password}
	data, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return nil, nil, err
	}
	return decodeTokenPayload(data)
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*oauth2.Token, *domain.User, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	data, err := c.do(ctx, http.MethodPost, "/auth/register", nil, body)
	if err != nil {
		return nil, nil, err
	}
	return decodeTokenPayload(data)
}

func (c *Client) Logout(ctx context.Context, token *oauth2.Token) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", token, nil)
	return err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	body := map[string]string{"refreshToken": refreshToken}
	data, err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, body)
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	var payload tokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	return payload.toToken(), nil
}

func (c *Client) Profile(ctx context.Context, token *oauth2.Token) (*domain.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/users/me", token, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}
	return &payload.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token *oauth2.Token, user domain.User) (*domain.User, error) {
	data, err := c.do(ctx, http.MethodPut, "/users/me", token, user)
	if err != nil {
		return nil, err
	}
	var payload struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}
	return &payload.User, nil
}

func (c *Client) Bookmarks(ctx context.Context, token *oauth2.Token) ([]domain.Article, error) {
	data, err := c.do(ctx, http.MethodGet, "/users/me/bookmarks", token, nil)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Articles []domain.Article `json:"articles"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode bookmarks response: %w", err)
	}
	return payload.Articles, nil
}

func (c *Client) AddBookmark(ctx context.Context, token *oauth2.Token, article domain.Article) error {
	_, err := c.do(ctx, http.MethodPost, "/users/me/bookmarks", token, article)
	return err
}

func (c *Client) RemoveBookmark(ctx context.Context, token *oauth2.Token, articleID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/me/bookmarks/"+url.PathEscape(articleID), token, nil)
	return err
}

func decodeTokenPayload(data json.RawMessage) (*oauth2.Token, *domain.User, error) {
	var payload tokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	return payload.toToken(), payload.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, token *oauth2.Token, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil && token.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the auth service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("Failed to close response body", "error", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: "authentication failed"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(data), 200)}
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	if !envelope.Success {
		msg := envelope.Message
		if msg == "" {
			msg = "auth service returned an unsuccessful response"
		}
		return nil, errors.New(msg)
	}
	return envelope.Data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
