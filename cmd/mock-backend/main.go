package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/NewsFeedClient/internal/domain"
	"github.com/NewsFeedClient/internal/infra/newsapi"
)

// A stand-in for the real backend: the canned article set behind the same
// response envelope, plus just enough account state to exercise the auth
// flows. MOCK_LATENCY delays every /news response and MOCK_FAIL_EVERY
// makes every Nth one fail, for poking at the client's retry handling.

type account struct {
	user      domain.User
	password  string
	bookmarks []domain.Article
}

type backend struct {
	latency   time.Duration
	failEvery int

	mu       sync.Mutex
	requests int
	users    map[string]*account // by email
	sessions map[string]*account // by access token
	refresh  map[string]*account // by refresh token
}

func newBackend(latency time.Duration, failEvery int) *backend {
	b := &backend{
		latency:   latency,
		failEvery: failEvery,
		users:     make(map[string]*account),
		sessions:  make(map[string]*account),
		refresh:   make(map[string]*account),
	}
	b.users["demo@example.com"] = &account{
		user:     domain.User{ID: uuid.NewString(), Name: "Demo Reader", Email: "demo@example.com"},
		password: "password",
	}
	return b
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type tokenPayload struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *domain.User `json:"user,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (b *backend) handleNews(w http.ResponseWriter, r *http.Request) {
	if status := b.injectedFailure(r); status != 0 {
		writeJSON(w, status, envelope{Success: false, Message: "injected failure"})
		return
	}
	if b.latency > 0 {
		time.Sleep(b.latency)
	}

	query := domain.FeedQuery{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
	}
	articles := newsapi.FilterArticles(newsapi.SampleArticles(), query)
	page := domain.NewsPage{
		Articles:     articles,
		TotalResults: len(articles),
		Page:         1,
		PageSize:     len(articles),
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: page})
}

// injectedFailure returns a non-zero status when this request should fail,
// either on the MOCK_FAIL_EVERY cadence or forced via ?fail=<status>.
func (b *backend) injectedFailure(r *http.Request) int {
	if forced := r.URL.Query().Get("fail"); forced != "" {
		if status, err := strconv.Atoi(forced); err == nil && status >= 400 {
			return status
		}
	}
	if b.failEvery <= 0 {
		return 0
	}
	b.mu.Lock()
	b.requests++
	nth := b.requests%b.failEvery == 0
	b.mu.Unlock()
	if nth {
		return http.StatusServiceUnavailable
	}
	return 0
}

func (b *backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "malformed request body"})
		return
	}

	b.mu.Lock()
	acct, ok := b.users[strings.ToLower(body.Email)]
	b.mu.Unlock()
	if !ok || acct.password != body.Password {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: b.issueTokens(acct)})
}

func (b *backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "malformed request body"})
		return
	}
	email := strings.ToLower(body.Email)
	if email == "" || body.Password == "" {
		writeJSON(w, http.StatusOK, envelope{Success: false, Message: "email and password are required"})
		return
	}

	b.mu.Lock()
	if _, exists := b.users[email]; exists {
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, envelope{Success: false, Message: "email already registered"})
		return
	}
	acct := &account{
		user:     domain.User{ID: uuid.NewString(), Name: body.Name, Email: email},
		password: body.Password,
	}
	b.users[email] = acct
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: b.issueTokens(acct)})
}

func (b *backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "malformed request body"})
		return
	}

	b.mu.Lock()
	acct, ok := b.refresh[body.RefreshToken]
	if ok {
		delete(b.refresh, body.RefreshToken)
	}
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "unknown refresh token"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: b.issueTokens(acct)})
}

func (b *backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		b.mu.Lock()
		delete(b.sessions, token)
		b.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (b *backend) handleProfile(w http.ResponseWriter, r *http.Request) {
	acct, ok := b.authenticated(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "missing or expired token"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]domain.User{"user": acct.user}})
}

func (b *backend) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	acct, ok := b.authenticated(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "missing or expired token"})
		return
	}
	var update domain.User
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "malformed request body"})
		return
	}

	b.mu.Lock()
	if update.Name != "" {
		acct.user.Name = update.Name
	}
	if update.Email != "" {
		acct.user.Email = update.Email
	}
	user := acct.user
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string]domain.User{"user": user}})
}

func (b *backend) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	acct, ok := b.authenticated(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "missing or expired token"})
		return
	}

	b.mu.Lock()
	articles := append([]domain.Article(nil), acct.bookmarks...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: map[string][]domain.Article{"articles": articles}})
}

func (b *backend) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	acct, ok := b.authenticated(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "missing or expired token"})
		return
	}
	var article domain.Article
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "malformed request body"})
		return
	}

	b.mu.Lock()
	exists := false
	for _, saved := range acct.bookmarks {
		if saved.Identity() == article.Identity() {
			exists = true
			break
		}
	}
	if !exists {
		acct.bookmarks = append(acct.bookmarks, article)
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (b *backend) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	acct, ok := b.authenticated(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "missing or expired token"})
		return
	}
	id := mux.Vars(r)["id"]

	b.mu.Lock()
	kept := acct.bookmarks[:0]
	for _, saved := range acct.bookmarks {
		if saved.ID != id && saved.Identity() != id {
			kept = append(kept, saved)
		}
	}
	acct.bookmarks = kept
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func (b *backend) issueTokens(acct *account) tokenPayload {
	access := uuid.NewString()
	refreshToken := uuid.NewString()

	b.mu.Lock()
	b.sessions[access] = acct
	b.refresh[refreshToken] = acct
	b.mu.Unlock()

	user := acct.user
	return tokenPayload{
		Token:        access,
		RefreshToken: refreshToken,
		ExpiresIn:    3600,
		User:         &user,
	}
}

func (b *backend) authenticated(r *http.Request) (*account, bool) {
	token := bearerToken(r)
	if token == "" {
		return nil, false
	}
	b.mu.Lock()
	acct, ok := b.sessions[token]
	b.mu.Unlock()
	return acct, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func main() {
	latency, _ := time.ParseDuration(os.Getenv("MOCK_LATENCY"))
	failEvery, _ := strconv.Atoi(os.Getenv("MOCK_FAIL_EVERY"))
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "8081"
	}

	b := newBackend(latency, failEvery)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	r.HandleFunc("/news", b.handleNews).Methods("GET")
	r.HandleFunc("/auth/login", b.handleLogin).Methods("POST")
	r.HandleFunc("/auth/register", b.handleRegister).Methods("POST")
	r.HandleFunc("/auth/refresh", b.handleRefresh).Methods("POST")
	r.HandleFunc("/auth/logout", b.handleLogout).Methods("POST")
	r.HandleFunc("/users/me", b.handleProfile).Methods("GET")
	r.HandleFunc("/users/me", b.handleUpdateProfile).Methods("PUT")
	r.HandleFunc("/users/me/bookmarks", b.handleBookmarks).Methods("GET")
	r.HandleFunc("/users/me/bookmarks", b.handleAddBookmark).Methods("POST")
	r.HandleFunc("/users/me/bookmarks/{id}", b.handleRemoveBookmark).Methods("DELETE")

	slog.Info("Mock backend running", "port", port, "latency", latency, "fail_every", failEvery)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
