// Package handler wires the HTTP routes to the stores and the authorization
// gate. Handlers stay thin: credentials are classified by middleware, data
// access goes through the store interfaces, and failures map to 4xx/5xx
// responses without leaking internals.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"sxfs/internal/cache"
	"sxfs/internal/config"
	"sxfs/internal/identifier"
	"sxfs/internal/repository"
)

// Pinger reports backing-store health. Nil when running without a database.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	uploads repository.UploadStore
	links   repository.LinkStore
	cache   cache.LinkCache
	site    *config.Site
	logger  *zap.Logger
	pinger  Pinger
}

func New(uploads repository.UploadStore, links repository.LinkStore, linkCache cache.LinkCache, site *config.Site, logger *zap.Logger, pinger Pinger) *Handler {
	return &Handler{
		uploads: uploads,
		links:   links,
		cache:   linkCache,
		site:    site,
		logger:  logger,
		pinger:  pinger,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// loginRedirect sends an anonymous caller to the login page, preserving the
// page it tried to reach.
func (h *Handler) loginRedirect(w http.ResponseWriter, r *http.Request) {
	target := "/login?redirect=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// parseID decodes an id path segment, answering 400 for malformed input.
// Returns false when the response has already been written.
func (h *Handler) parseID(w http.ResponseWriter, raw string) (identifier.ID, bool) {
	id, err := identifier.Parse(raw)
	if err != nil {
		h.logger.Warn("Malformed identifier in path",
			zap.String("raw", raw),
			zap.Error(err),
		)
		http.Error(w, "Invalid identifier", http.StatusBadRequest)
		return identifier.ID{}, false
	}
	return id, true
}

func (h *Handler) PingHandler(rw http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		rw.WriteHeader(http.StatusOK)
		return
	}

	if err := h.pinger.Ping(r.Context()); err != nil {
		h.logger.Error("Database ping failed", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rw.WriteHeader(http.StatusOK)
}
