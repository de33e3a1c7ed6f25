package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NewsFeedClient/internal/infra/cache"
	"github.com/NewsFeedClient/pkg/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewHTTPServer(cfg *config.Config, store *cache.Store) *http.Server {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprintf(w, "OK"); err != nil {
			// Log error but don't fail health check
			_ = err
		}
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/debug/cache", cacheStatsHandler(store)).Methods("GET")
	r.HandleFunc("/debug/cache", cacheClearHandler(store)).Methods("DELETE")

	return &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}
}

func cacheStatsHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(store.Stats()); err != nil {
			http.Error(w, "failed to encode cache stats", http.StatusInternalServerError)
		}
	}
}

func cacheClearHandler(store *cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if key := r.URL.Query().Get("key"); key != "" {
			store.ClearKey(key)
		} else {
			store.Clear()
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
