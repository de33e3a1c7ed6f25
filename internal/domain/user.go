package domain

import (
	"context"

	"golang.org/x/oauth2"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthService wraps the account endpoints of the backend. Tokens are
// standard OAuth2 bearer tokens; Expiry is set from the server's
// expiresIn so callers can refresh proactively.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*oauth2.Token, *User, error)
	Signup(ctx context.Context, name, email, password string) (*oauth2.Token, *User, error)
	Logout(ctx context.Context, token *oauth2.Token) error
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	Profile(ctx context.Context, token *oauth2.Token) (*User, error)
	UpdateProfile(ctx context.Context, token *oauth2.Token, user User) (*User, error)
	Bookmarks(ctx context.Context, token *oauth2.Token) ([]Article, error)
	AddBookmark(ctx context.Context, token *oauth2.Token, article Article) error
	RemoveBookmark(ctx context.Context, token *oauth2.Token, articleID string) error
}
