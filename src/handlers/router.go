// src/handlers/router.go
package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/username/creditreport/src/security"
	"github.com/username/creditreport/src/utils"
)

type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int
	// AuthService enables bearer authentication on /api when non-nil.
	AuthService *security.AuthService
	// StaticDir, when set, is served at / with index.html as the fallback for unknown paths.
	StaticDir string
}

func NewRouter(reportHandler *ReportHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(ContextualLoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(ProxyHeadersMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "If-None-Match", "X-Requested-With"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(RateLimitMiddleware(cfg.RateLimitPerSecond, cfg.RateLimitBurst))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", reportHandler.HandleHealth)

		r.Group(func(r chi.Router) {
			if cfg.AuthService != nil {
				r.Use(AuthMiddleware(cfg.AuthService))
			}

			r.Post("/upload", reportHandler.HandleUpload)
			r.Get("/reports", reportHandler.HandleListReports)
			r.Get("/reports/{id}", reportHandler.HandleGetReport)
			r.Put("/reports/{id}", reportHandler.HandleRenameReport)
			r.Delete("/reports/{id}", reportHandler.HandleDeleteReport)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			utils.SendJSONError(w, "Not found", http.StatusNotFound)
		})
	})

	if cfg.StaticDir != "" {
		r.Get("/*", spaHandler(cfg.StaticDir))
	}

	return r
}

// spaHandler serves files from dir and falls back to index.html so client side
// routes resolve.
func spaHandler(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		path := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}
