package mocks

import (
	"context"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*oauth2.Token, *domain.User, error) {
	args := m.Called(ctx, email, password)
	return tokenArg(args.Get(0)), userArg(args.Get(1)), args.Error(2)
}

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (*oauth2.Token, *domain.User, error) {
	args := m.Called(ctx, name, email, password)
	return tokenArg(args.Get(0)), userArg(args.Get(1)), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, token *oauth2.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	args := m.Called(ctx, refreshToken)
	return tokenArg(args.Get(0)), args.Error(1)
}

func (m *MockAuthService) Profile(ctx context.Context, token *oauth2.Token) (*domain.User, error) {
	args := m.Called(ctx, token)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, token *oauth2.Token, user domain.User) (*domain.User, error) {
	args := m.Called(ctx, token, user)
	return userArg(args.Get(0)), args.Error(1)
}

func (m *MockAuthService) Bookmarks(ctx context.Context, token *oauth2.Token) ([]domain.Article, error) {
	args := m.Called(ctx, token)

	var articles []domain.Article
	if args.Get(0) != nil {
		articles = args.Get(0).([]domain.Article)
	}
	return articles, args.Error(1)
}

func (m *MockAuthService) AddBookmark(ctx context.Context, token *oauth2.Token, article domain.Article) error {
	args := m.Called(ctx, token, article)
	return args.Error(0)
}

func (m *MockAuthService) RemoveBookmark(ctx context.Context, token *oauth2.Token, articleID string) error {
	args := m.Called(ctx, token, articleID)
	return args.Error(0)
}

func tokenArg(v interface{}) *oauth2.Token {
	if v == nil {
		return nil
	}
	return v.(*oauth2.Token)
}

func userArg(v interface{}) *domain.User {
	if v == nil {
		return nil
	}
	return v.(*domain.User)
}
