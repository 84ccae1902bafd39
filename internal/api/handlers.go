package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starford/eihwaz/internal/apperr"
	"github.com/starford/eihwaz/internal/classservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *classservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *classservice.Service) *Handler {
	return &Handler{svc: svc}
}

// param extracts a chi URL parameter, decoding percent escapes so clients
// can pass names like "My%20Class".
func param(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// caseSensitive reports whether the request asked for exact-case lookup.
func caseSensitive(r *http.Request) bool {
	return r.URL.Query().Get("case_sensitive") == "true"
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List loaded categories
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoryListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": h.svc.Categories(r.Context()),
	})
}

// GetCategory handles GET /api/categories/{category}.
//
//	@Summary		Get one category's summary
//	@Tags			categories
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Success		200			{object}	CategorySummary
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{category} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category := param(r, "category")
	summary, err := h.svc.CategorySummaryFor(r.Context(), category)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("unknown category"))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListClasses handles GET /api/categories/{category}/classes.
//
//	@Summary		List a category's classes with pagination
//	@Tags			classes
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	ClassListResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{category}/classes [get]
func (h *Handler) ListClasses(w http.ResponseWriter, r *http.Request) {
	category := param(r, "category")
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, total, err := h.svc.ListClasses(r.Context(), category, limit, offset)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownCategory) {
			writeJSON(w, http.StatusNotFound, errorBody("unknown category"))
		} else {
			slog.Error("list classes failed", slog.String("category", category), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	items := make([]ClassListItem, len(rows))
	for i, row := range rows {
		items[i] = ClassListItem{
			Name:         row.Name,
			Source:       row.Source,
			InheritsFrom: row.InheritsFrom,
			Model:        row.Model,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"classes": items,
		"total":   total,
	})
}

// GetClass handles GET /api/categories/{category}/classes/{name}.
//
//	@Summary		Get a single class with its chain and children
//	@Tags			classes
//	@Produce		json
//	@Param			category		path		string	true	"Category name"
//	@Param			name			path		string	true	"Class name"
//	@Param			case_sensitive	query		bool	false	"Require exact-case match"
//	@Success		200				{object}	ClassDetail
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{category}/classes/{name} [get]
func (h *Handler) GetClass(w http.ResponseWriter, r *http.Request) {
	category := param(r, "category")
	name := param(r, "name")

	detail, err := h.svc.Detail(r.Context(), category, name, caseSensitive(r))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get class failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// InheritancePath handles GET /api/categories/{category}/classes/{name}/path.
//
//	@Summary		Get a class's inheritance chain
//	@Tags			hierarchy
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Param			name		path		string	true	"Class name"
//	@Success		200			{object}	PathResponse
//	@Security		BearerAuth
//	@Router			/categories/{category}/classes/{name}/path [get]
func (h *Handler) InheritancePath(w http.ResponseWriter, r *http.Request) {
	category := param(r, "category")
	name := param(r, "name")
	writeJSON(w, http.StatusOK, PathResponse{
		Name: name,
		Path: h.svc.InheritancePath(r.Context(), category, name),
	})
}

// Children handles GET /api/categories/{category}/classes/{name}/children.
//
//	@Summary		Get a class's immediate children
//	@Tags			hierarchy
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Param			name		path		string	true	"Class name"
//	@Success		200			{object}	NamesResponse
//	@Security		BearerAuth
//	@Router			/categories/{category}/classes/{name}/children [get]
func (h *Handler) Children(w http.ResponseWriter, r *http.Request) {
	category := param(r, "category")
	name := param(r, "name")
	writeJSON(w, http.StatusOK, NamesResponse{
		Name:    name,
		Classes: h.svc.Children(r.Context(), category, name),
	})
}

// Descendants handles GET /api/categories/{category}/classes/{name}/descendants.
//
//	@Summary		Get a class's transitive descendants
//	@Tags			hierarchy
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Param			name		path		string	true	"Class name"
//	@Success		200			{object}	NamesResponse
//	@Security		BearerAuth
//	@Router			/categories/{category}/classes/{name}/descendants [get]
func (h *Handler) Descendants(w http.ResponseWriter, r *http.Request) {
	category := param(r, "category")
	name := param(r, "name")
	writeJSON(w, http.StatusOK, NamesResponse{
		Name:    name,
		Classes: h.svc.Descendants(r.Context(), category, name),
	})
}

// CommonAncestor handles GET /api/categories/{category}/ancestor.
//
//	@Summary		Find the closest common ancestor of two classes
//	@Tags			hierarchy
//	@Produce		json
//	@Param			category	path		string	true	"Category name"
//	@Param			a			query		string	true	"First class"
//	@Param			b			query		string	true	"Second class"
//	@Success		200			{object}	AncestorResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{category}/ancestor [get]
func (h *Handler) CommonAncestor(w http.ResponseWriter, r *http.Request) {
	category := param(r, "category")
	q := r.URL.Query()
	a, b := q.Get("a"), q.Get("b")
	if a == "" || b == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameters 'a' and 'b' are required"))
		return
	}
	ancestor, found := h.svc.CommonAncestor(r.Context(), category, a, b)
	writeJSON(w, http.StatusOK, AncestorResponse{A: a, B: b, Ancestor: ancestor, Found: found})
}

// FindClassCategory handles GET /api/classes/{name}/category.
//
//	@Summary		Find the category that owns a class
//	@Tags			classes
//	@Produce		json
//	@Param			name			path		string	true	"Class name"
//	@Param			case_sensitive	query		bool	false	"Require exact-case match"
//	@Success		200				{object}	CategoryLookupResponse
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/classes/{name}/category [get]
func (h *Handler) FindClassCategory(w http.ResponseWriter, r *http.Request) {
	name := param(r, "name")
	category, ok := h.svc.FindClassCategory(r.Context(), name, caseSensitive(r))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, CategoryLookupResponse{Name: name, Category: category})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across classes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// ValidationInfo handles GET /api/validation.
//
//	@Summary		Get the export's validation metadata
//	@Tags			export
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Security		BearerAuth
//	@Router			/validation [get]
func (h *Handler) ValidationInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ValidationInfo(r.Context()))
}

// Reload handles POST /api/reload.
//
//	@Summary		Re-read the export file and rebuild all indexes
//	@Tags			export
//	@Produce		json
//	@Success		200	{object}	ReloadResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Reload(r.Context())
	if err != nil {
		slog.Error("reload failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("reload failed"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
