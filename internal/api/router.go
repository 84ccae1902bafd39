package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/eihwaz/internal/classservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *classservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Categories.
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{category}", h.GetCategory)
	r.Get("/categories/{category}/classes", h.ListClasses)
	r.Get("/categories/{category}/classes/{name}", h.GetClass)
	r.Get("/categories/{category}/classes/{name}/path", h.InheritancePath)
	r.Get("/categories/{category}/classes/{name}/children", h.Children)
	r.Get("/categories/{category}/classes/{name}/descendants", h.Descendants)
	r.Get("/categories/{category}/ancestor", h.CommonAncestor)

	// Cross-category class lookup.
	r.Get("/classes/{name}/category", h.FindClassCategory)

	// Search.
	r.Get("/search", h.Search)

	// Export metadata.
	r.Get("/validation", h.ValidationInfo)
	r.Post("/reload", h.Reload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
