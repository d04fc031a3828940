package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sxfs/internal/middleware"
)

func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Gzip)
	r.Use(middleware.Authenticate(h.site, h.logger))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/u", http.StatusSeeOther)
	})

	r.Get("/ping", h.PingHandler)
	r.Get("/login", h.LoginFormHandler)
	r.Post("/login", h.LoginHandler)
	r.Get("/logout", h.LogoutHandler)

	r.Route("/u", func(r chi.Router) {
		r.Post("/", h.CreateUpload)
		r.Get("/", h.ListUploads)
		r.Get("/d/{id}", h.DeleteUploadByID)
		r.Get("/d/{id}/{filename}", h.DeleteUpload)
		r.Get("/{id}", h.ViewUploadByID)
		r.Get("/{id}/{filename}", h.ViewUpload)
	})

	r.Route("/l", func(r chi.Router) {
		r.Post("/", h.CreateLink)
		r.Get("/", h.ListLinks)
		r.Get("/d/{id}", h.DeleteLink)
		r.Get("/{id}", h.FollowLink)
		r.Get("/{id}/qr", h.LinkQR)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	return r
}
