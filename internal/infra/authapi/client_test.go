package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/pkg/config"
)

func testClient(baseURL string) *Client {
	return NewClient(&config.Config{
		AuthAPIURL:     baseURL,
		RequestTimeout: 2 * time.Second,
	})
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "reader@example.com", body["email"])

		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"token": "access-abc",
				"refreshToken": "refresh-xyz",
				"expiresIn": 3600,
				"user": {"id": "u1", "name": "Reader", "email": "reader@example.com"}
			}
		}`))
	}))
	defer server.Close()

	token, user, err := testClient(server.URL).Login(context.Background(), "reader@example.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "access-abc", token.AccessToken)
	assert.Equal(t, "refresh-xyz", token.RefreshToken)
	assert.True(t, token.Valid())
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.Expiry, 5*time.Second)

	require.NotNil(t, user)
	assert.Equal(t, "Reader", user.Name)
}

func TestLoginRejectedCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, _, err := testClient(server.URL).Login(context.Background(), "reader@example.com", "wrong")
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, domain.ErrKindAuth, domain.ClassifyError(err))
}

func TestLoginEnvelopeFailureSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "account is locked"}`))
	}))
	defer server.Close()

	_, _, err := testClient(server.URL).Login(context.Background(), "reader@example.com", "hunter2")
	require.Error(t, err)
	assert.Equal(t, "account is locked", err.Error())
}

func TestRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-xyz", body["refreshToken"])

		_, _ = w.Write([]byte(`{"success": true, "data": {"token": "access-new", "refreshToken": "refresh-new", "expiresIn": 3600}}`))
	}))
	defer server.Close()

	token, err := testClient(server.URL).Refresh(context.Background(), "refresh-xyz")
	require.NoError(t, err)
	assert.Equal(t, "access-new", token.AccessToken)
	assert.Equal(t, "refresh-new", token.RefreshToken)
}

func TestProfileSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-abc", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success": true, "data": {"user": {"id": "u1", "name": "Reader", "email": "reader@example.com"}}}`))
	}))
	defer server.Close()

	user, err := testClient(server.URL).Profile(context.Background(), &oauth2.Token{AccessToken: "access-abc"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestBookmarkRoundTrip(t *testing.T) {
	var added domain.Article
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&added))
			_, _ = w.Write([]byte(`{"success": true}`))
		case r.Method == http.MethodDelete:
			assert.Equal(t, "/users/me/bookmarks/a1", r.URL.Path)
			_, _ = w.Write([]byte(`{"success": true}`))
		default:
			_, _ = w.Write([]byte(`{"success": true, "data": {"articles": [{"id": "a1", "title": "Saved"}]}}`))
		}
	}))
	defer server.Close()

	client := testClient(server.URL)
	token := &oauth2.Token{AccessToken: "access-abc"}

	require.NoError(t, client.AddBookmark(context.Background(), token, domain.Article{ID: "a1", Title: "Saved"}))
	assert.Equal(t, "a1", added.ID)

	articles, err := client.Bookmarks(context.Background(), token)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Saved", articles[0].Title)

	require.NoError(t, client.RemoveBookmark(context.Background(), token, "a1"))
}
