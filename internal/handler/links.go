package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"sxfs/internal/auth"
	"sxfs/internal/identifier"
	"sxfs/internal/repository"
)

type linkResult struct {
	ID  identifier.ID `json:"id"`
	URL string        `json:"url"`
}

// CreateLink shortens a URI passed in the uri query parameter. Requires the
// upload token or a user session.
func (h *Handler) CreateLink(rw http.ResponseWriter, r *http.Request) {
	outcome := auth.FromContext(r.Context())
	if !outcome.Authenticated() {
		http.Error(rw, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	uri := r.URL.Query().Get("uri")
	if uri == "" {
		http.Error(rw, "Missing uri parameter", http.StatusBadRequest)
		return
	}
	if _, err := url.Parse(uri); err != nil {
		h.logger.Warn("Attempted to shorten invalid uri",
			zap.String("uri", uri),
			zap.Error(err),
		)
		http.Error(rw, "Invalid uri", http.StatusBadRequest)
		return
	}

	link := repository.Link{
		ID:        identifier.New(),
		URI:       uri,
		CreatedAt: time.Now(),
	}

	if err := h.links.Save(r.Context(), link); err != nil {
		h.logger.Error("Failed to save link",
			zap.String("id", link.ID.String()),
			zap.String("uri", link.URI),
			zap.Error(err),
		)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(rw, http.StatusCreated, linkResult{
		ID:  link.ID,
		URL: h.site.BaseURL() + "/l/" + link.ID.String(),
	})
}

// ListLinks returns all links with hit counts, newest first.
func (h *Handler) ListLinks(rw http.ResponseWriter, r *http.Request) {
	outcome := auth.FromContext(r.Context())
	if !outcome.Authenticated() {
		h.loginRedirect(rw, r)
		return
	}

	links, err := h.links.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list links", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if links == nil {
		links = []repository.LinkListing{}
	}

	h.writeJSON(rw, http.StatusOK, links)
}

// FollowLink redirects to the stored target and counts the hit. The target
// may come from the cache, but the hit always goes to the store so the
// counter never drifts.
func (h *Handler) FollowLink(rw http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(rw, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	uri, cached := h.cache.GetURI(r.Context(), id.String())
	if !cached {
		listing, err := h.links.Get(r.Context(), id)
		if err != nil {
			h.respondLinkError(rw, id, err)
			return
		}
		uri = listing.URI
		h.cache.SetURI(r.Context(), id.String(), uri)
	}

	if err := h.links.Hit(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The cache outlived the row.
			h.cache.Invalidate(r.Context(), id.String())
			http.Error(rw, "Not Found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to increment hits",
			zap.String("id", id.String()),
			zap.Error(err),
		)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(rw, r, uri, http.StatusTemporaryRedirect)
}

// LinkQR renders a QR code pointing at the short URL.
func (h *Handler) LinkQR(rw http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(rw, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if _, err := h.links.Get(r.Context(), id); err != nil {
		h.respondLinkError(rw, id, err)
		return
	}

	png, err := qrcode.Encode(h.site.BaseURL()+"/l/"+id.String(), qrcode.Medium, 256)
	if err != nil {
		h.logger.Error("Failed to encode QR code",
			zap.String("id", id.String()),
			zap.Error(err),
		)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "image/png")
	rw.WriteHeader(http.StatusOK)
	rw.Write(png)
}

// DeleteLink removes a shortened link.
func (h *Handler) DeleteLink(rw http.ResponseWriter, r *http.Request) {
	outcome := auth.FromContext(r.Context())
	if !outcome.Authenticated() {
		h.loginRedirect(rw, r)
		return
	}

	id, ok := h.parseID(rw, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	listing, err := h.links.Get(r.Context(), id)
	if err != nil {
		h.respondLinkError(rw, id, err)
		return
	}

	if err := h.links.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete link",
			zap.String("id", id.String()),
			zap.String("uri", listing.URI),
			zap.Error(err),
		)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.cache.Invalidate(r.Context(), id.String())

	h.writeJSON(rw, http.StatusOK, map[string]string{"deleted": "link"})
}

func (h *Handler) respondLinkError(rw http.ResponseWriter, id identifier.ID, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(rw, "Not Found", http.StatusNotFound)
		return
	}

	h.logger.Error("Failed to fetch link",
		zap.String("id", id.String()),
		zap.Error(err),
	)
	http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
