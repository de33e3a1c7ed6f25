package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/NewsFeedClient/internal/domain"
)

// ErrNotAuthenticated is returned when an operation needs a logged-in
// session and none exists.
var ErrNotAuthenticated = errors.New("authentication required, no active session")

// Session holds the account state for one client: the signed-in user and
// their OAuth2 token, refreshed transparently once it expires.
type Session struct {
	auth domain.AuthService

	mu    sync.Mutex
	token *oauth2.Token
	user  *domain.User
}

func NewSession(auth domain.AuthService) *Session {
	return &Session{auth: auth}
}

func (s *Session) Login(ctx context.Context, email, password string) (*domain.User, error) {
	token, user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	slog.Info("Logged in", "email", email)
	return user, nil
}

func (s *Session) Signup(ctx context.Context, name, email, password string) (*domain.User, error) {
	token, user, err := s.auth.Signup(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	slog.Info("Account created", "email", email)
	return user, nil
}

// Logout clears the session. The server-side call is best effort; the
// local session is gone even if it fails.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.token = nil
	s.user = nil
	s.mu.Unlock()

	if token == nil {
		return
	}
	if err := s.auth.Logout(ctx, token); err != nil {
		slog.Warn("Server-side logout failed", "error", err)
	}
	slog.Info("Logged out")
}

// Token returns a valid access token, refreshing the expired one when a
// refresh token is available.
func (s *Session) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return nil, ErrNotAuthenticated
	}
	if s.token.Valid() {
		return s.token, nil
	}
	if s.token.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	refreshed, err := s.auth.Refresh(ctx, s.token.RefreshToken)
	if err != nil {
		return nil, err
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = s.token.RefreshToken
	}
	s.token = refreshed
	slog.Debug("Access token refreshed")
	return refreshed, nil
}

func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != nil
}

// User returns the profile cached by the last login or profile fetch.
func (s *Session) User() (*domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

func (s *Session) Profile(ctx context.Context) (*domain.User, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.auth.Profile(ctx, token)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

func (s *Session) UpdateProfile(ctx context.Context, user domain.User) (*domain.User, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := s.auth.UpdateProfile(ctx, token, user)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = updated
	s.mu.Unlock()
	slog.Info("Profile updated", "email", updated.Email)
	return updated, nil
}

func (s *Session) Bookmarks(ctx context.Context) ([]domain.Article, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	return s.auth.Bookmarks(ctx, token)
}

func (s *Session) AddBookmark(ctx context.Context, article domain.Article) error {
	token, err := s.Token(ctx)
	if err != nil {
		return err
	}
	return s.auth.AddBookmark(ctx, token, article)
}

func (s *Session) RemoveBookmark(ctx context.Context, articleID string) error {
	token, err := s.Token(ctx)
	if err != nil {
		return err
	}
	return s.auth.RemoveBookmark(ctx, token, articleID)
}
