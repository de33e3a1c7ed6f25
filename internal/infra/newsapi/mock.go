package newsapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NewsFeedClient/internal/domain"
)

// MockProvider serves canned articles without touching the network. It
// mirrors the real API's filtering so the rest of the stack behaves the
// same in offline development: category match, case-insensitive search
// over title and description, optional artificial latency.
type MockProvider struct {
	delay    time.Duration
	articles []domain.Article
}

func NewMockProvider(delay time.Duration) *MockProvider {
	return &MockProvider{
		delay:    delay,
		articles: SampleArticles(),
	}
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) FetchNews(ctx context.Context, query domain.FeedQuery) (*domain.NewsPage, error) {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("cannot connect to the news service: %w", ctx.Err())
		case <-time.After(m.delay):
		}
	}

	matched := FilterArticles(m.articles, query)
	return &domain.NewsPage{
		Articles:     matched,
		TotalResults: len(matched),
		Page:         1,
		PageSize:     20,
	}, nil
}

// FilterArticles applies the upstream API's category and search semantics
// to a fixed article set. Shared with the mock backend binary.
func FilterArticles(articles []domain.Article, query domain.FeedQuery) []domain.Article {
	category := strings.ToLower(strings.TrimSpace(query.Category))
	term := strings.ToLower(strings.TrimSpace(query.Query))

	matched := []domain.Article{}
	for _, a := range articles {
		if category != "" && category != domain.CategoryAll && !strings.EqualFold(a.Category, category) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(a.Title), term) &&
			!strings.Contains(strings.ToLower(a.Description), term) {
			continue
		}
		matched = append(matched, a)
	}
	return matched
}

// SampleArticles returns the canned data set used by the mock provider
// and the mock backend.
func SampleArticles() []domain.Article {
	now := time.Now()
	mk := func(title, desc, category, source string, age time.Duration) domain.Article {
		id := uuid.NewString()
		return domain.Article{
			ID:          id,
			Title:       title,
			Description: desc,
			URL:         "https://news.example.com/articles/" + id,
			ImageURL:    "https://news.example.com/images/" + id + ".jpg",
			Source:      domain.Source{ID: strings.ReplaceAll(strings.ToLower(source), " ", "-"), Name: source},
			Author:      "Newsroom Staff",
			PublishedAt: now.Add(-age),
			Category:    category,
		}
	}

	return []domain.Article{
		mk("Quantum Chip Maker Doubles Qubit Count", "A startup claims a record-setting processor aimed at error-corrected workloads.", "technology", "Tech Daily", 1*time.Hour),
		mk("Open Source Database Gets Major Release", "The new version focuses on replication performance and operator ergonomics.", "technology", "Stack Report", 3*time.Hour),
		mk("Championship Final Goes to Extra Time", "A late equalizer forces thirty more minutes in front of a sold-out crowd.", "sports", "Sportswire", 2*time.Hour),
		mk("Marathon Record Falls by Eleven Seconds", "Ideal conditions and a fast pace group produce a historic finish.", "sports", "Sportswire", 26*time.Hour),
		mk("Streaming Series Renewed for Third Season", "The ensemble drama remains the platform's most-watched original.", "entertainment", "Screen Times", 5*time.Hour),
		mk("Festival Lineup Announced for Summer", "Headliners span four decades of popular music.", "entertainment", "Screen Times", 48*time.Hour),
		mk("Central Bank Holds Rates Steady", "Policymakers cite cooling inflation and a resilient labor market.", "business", "Market Ledger", 4*time.Hour),
		mk("Chipmaker Beats Quarterly Estimates", "Data center demand lifts revenue past analyst expectations.", "business", "Market Ledger", 7*time.Hour),
		mk("New Guidance Issued on Sleep and Heart Health", "Researchers link consistent sleep schedules to lower cardiac risk.", "health", "Wellness Journal", 12*time.Hour),
		mk("Hospital Network Expands Telemedicine Program", "Rural clinics gain specialist access through the new service.", "health", "Wellness Journal", 30*time.Hour),
		mk("Probe Returns First Images from Asteroid Flyby", "Scientists begin analysis of surface composition data.", "science", "Orbit Weekly", 6*time.Hour),
		mk("Deep-Sea Survey Finds Dozens of New Species", "An expedition mapping trench ecosystems reports unexpected diversity.", "science", "Orbit Weekly", 50*time.Hour),
		mk("City Council Approves Transit Expansion", "The plan adds two light-rail lines over the next decade.", "general", "Metro Desk", 8*time.Hour),
		mk("Weekend Storm Expected Along the Coast", "Forecasters warn of high winds and localized flooding.", "general", "Metro Desk", 90*time.Minute),
	}
}
