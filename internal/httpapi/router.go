package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(h *Handler) http.Handler {
	router := mux.NewRouter()
	router.Use(LogRequests)

	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(RateLimit(h.config.RateLimit))

	api.HandleFunc("/tools", h.ListTools).Methods(http.MethodGet)
	api.HandleFunc("/server-info", h.ServerInfo).Methods(http.MethodGet)
	api.HandleFunc("/blog", h.ListPosts).Methods(http.MethodGet)
	api.HandleFunc("/blog/{slug}", h.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/{tool}", h.RunTool).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: h.config.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			HeaderPages,
			HeaderNotes,
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
