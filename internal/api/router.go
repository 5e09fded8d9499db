package api

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hoanghai1803/spillcheck/internal/api/handlers"
	"github.com/hoanghai1803/spillcheck/internal/config"
	"github.com/hoanghai1803/spillcheck/internal/storage"
	"github.com/hoanghai1803/spillcheck/internal/topic"
)

//go:embed all:dist
var distFS embed.FS

// NewRouter creates and configures the HTTP router with all API routes and
// static file serving for the web client.
func NewRouter(store *storage.Store, builder handlers.RoundBuilder, trends topic.TrendSource, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	// API sub-router.
	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handlers.Health(store))
		api.Get("/story", handlers.GetStory(builder, store, cfg))
		api.Get("/trending", handlers.GetTrending(trends))
		api.Get("/rounds/recent", handlers.GetRecentRounds(store))

		api.Route("/games", func(games chi.Router) {
			games.Post("/", handlers.CreateGame(store, builder, cfg))
			games.Get("/{id}", handlers.GetGame(store, cfg))
			games.Post("/{id}/guess", handlers.GuessGame(store, cfg))
			games.Post("/{id}/next", handlers.NextRound(store, builder, cfg))
		})
	})

	// Serve the web client from the embedded dist/ directory.
	distContent, _ := fs.Sub(distFS, "dist")
	fileServer := http.FileServer(http.FS(distContent))

	// SPA fallback: serve index.html for any non-API GET request that does
	// not match a static file.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "/index.html"
		}

		f, err := distContent.Open(path[1:])
		if err != nil {
			r.URL.Path = "/"
			fileServer.ServeHTTP(w, r)
			return
		}
		f.Close()

		fileServer.ServeHTTP(w, r)
	})

	return r
}
