package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sxfs/internal/auth"
	"sxfs/internal/identifier"
	"sxfs/internal/repository"
)

type uploadResult struct {
	ID       identifier.ID `json:"id"`
	Filename string        `json:"filename"`
	URL      string        `json:"url"`
}

// CreateUpload stores a raw request body as a new asset. Requires the upload
// token or a user session.
func (h *Handler) CreateUpload(rw http.ResponseWriter, r *http.Request) {
	outcome := auth.FromContext(r.Context())
	if !outcome.Authenticated() {
		http.Error(rw, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "unknown"
	}

	content, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("Failed to read upload body", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	meta := repository.UploadMetadata{
		ID:        identifier.New(),
		Filename:  filename,
		Size:      int64(len(content)),
		CreatedAt: time.Now(),
	}

	if err := h.uploads.Save(r.Context(), meta, content); err != nil {
		h.logger.Error("Failed to save upload",
			zap.String("id", meta.ID.String()),
			zap.String("filename", meta.Filename),
			zap.Error(err),
		)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(rw, http.StatusCreated, uploadResult{
		ID:       meta.ID,
		Filename: meta.Filename,
		URL:      h.site.BaseURL() + "/u/" + meta.ID.String() + "/" + url.PathEscape(meta.Filename),
	})
}

// ListUploads returns all upload metadata, newest first. Anonymous callers
// are sent to the login page.
func (h *Handler) ListUploads(rw http.ResponseWriter, r *http.Request) {
	outcome := auth.FromContext(r.Context())
	if !outcome.Authenticated() {
		h.loginRedirect(rw, r)
		return
	}

	uploads, err := h.uploads.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list uploads", zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if uploads == nil {
		uploads = []repository.UploadMetadata{}
	}

	h.writeJSON(rw, http.StatusOK, uploads)
}

// ViewUploadByID redirects to the canonical id/filename URL.
func (h *Handler) ViewUploadByID(rw http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(rw, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	meta, err := h.uploads.GetMetadata(r.Context(), id)
	if err != nil {
		h.respondUploadError(rw, id, err)
		return
	}

	target := "/u/" + id.String() + "/" + url.PathEscape(meta.Filename)
	http.Redirect(rw, r, target, http.StatusFound)
}

// ViewUpload serves the stored content. The filename in the path must match
// the stored one exactly; a mismatch is indistinguishable from a missing id.
func (h *Handler) ViewUpload(rw http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(rw, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	filename := chi.URLParam(r, "filename")

	meta, err := h.uploads.GetMetadata(r.Context(), id)
	if err != nil {
		h.respondUploadError(rw, id, err)
		return
	}
	if meta.Filename != filename {
		http.Error(rw, "Not Found", http.StatusNotFound)
		return
	}

	content, err := h.uploads.GetContent(r.Context(), id)
	if err != nil {
		h.respondUploadError(rw, id, err)
		return
	}

	rw.Header().Set("Content-Type", contentTypeFor(filename))
	rw.Header().Set("Content-Length", strconv.Itoa(len(content)))
	rw.WriteHeader(http.StatusOK)
	rw.Write(content)
}

// DeleteUploadByID redirects to the canonical delete URL carrying the stored
// filename.
func (h *Handler) DeleteUploadByID(rw http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(rw, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	meta, err := h.uploads.GetMetadata(r.Context(), id)
	if err != nil {
		h.respondUploadError(rw, id, err)
		return
	}

	target := "/u/d/" + id.String() + "/" + url.PathEscape(meta.Filename)
	http.Redirect(rw, r, target, http.StatusFound)
}

// DeleteUpload removes an asset. The row is pre-checked so a filename
// mismatch or an already-deleted id yields 404 rather than a silent no-op.
func (h *Handler) DeleteUpload(rw http.ResponseWriter, r *http.Request) {
	outcome := auth.FromContext(r.Context())
	if !outcome.Authenticated() {
		h.loginRedirect(rw, r)
		return
	}

	id, ok := h.parseID(rw, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	filename := chi.URLParam(r, "filename")

	meta, err := h.uploads.GetMetadata(r.Context(), id)
	if err != nil {
		h.respondUploadError(rw, id, err)
		return
	}
	if meta.Filename != filename {
		http.Error(rw, "Not Found", http.StatusNotFound)
		return
	}

	if err := h.uploads.Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete upload",
			zap.String("id", id.String()),
			zap.String("filename", meta.Filename),
			zap.Error(err),
		)
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(rw, http.StatusOK, map[string]string{"deleted": "upload"})
}

func (h *Handler) respondUploadError(rw http.ResponseWriter, id identifier.ID, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(rw, "Not Found", http.StatusNotFound)
		return
	}

	h.logger.Error("Failed to fetch upload",
		zap.String("id", id.String()),
		zap.Error(err),
	)
	http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
