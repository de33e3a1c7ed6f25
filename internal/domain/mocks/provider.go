package mocks

import (
	"context"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) FetchNews(ctx context.Context, query domain.FeedQuery) (*domain.NewsPage, error) {
	args := m.Called(ctx, query)

	// Handle nil page
	var page *domain.NewsPage
	if args.Get(0) != nil {
		page = args.Get(0).(*domain.NewsPage)
	}

	return page, args.Error(1)
}

func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
