package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"sxfs/internal/auth"
)

const sessionLifetime = 365 * 24 * time.Hour

// LoginFormHandler is the target of login redirects. Page rendering lives
// outside this service, so it answers with a plain prompt.
func (h *Handler) LoginFormHandler(rw http.ResponseWriter, r *http.Request) {
	outcome := auth.FromContext(r.Context())
	if outcome.Authenticated() {
		redirect := r.URL.Query().Get("redirect")
		if redirect == "" {
			redirect = "/"
		}
		http.Redirect(rw, r, redirect, http.StatusSeeOther)
		return
	}

	rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
	rw.WriteHeader(http.StatusUnauthorized)
	rw.Write([]byte("Authentication required. Submit username and password to POST /login.\n"))
}

// LoginHandler verifies a submitted credential pair and sets the session
// cookie.
func (h *Handler) LoginHandler(rw http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(rw, "Invalid form", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, ok := h.site.FindUser(username, password)
	if !ok {
		h.logger.Warn("Failed login attempt",
			zap.String("username", username),
			zap.String("remote", r.RemoteAddr),
		)
		http.Error(rw, http.StatusText(http.StatusNotAcceptable), http.StatusNotAcceptable)
		return
	}

	http.SetCookie(rw, &http.Cookie{
		Name:     auth.CookieName,
		Value:    auth.EncodeCookie(user.Username, user.Password),
		Path:     "/",
		Expires:  time.Now().Add(sessionLifetime),
		HttpOnly: true,
		Secure:   h.site.HTTPS,
		SameSite: http.SameSiteLaxMode,
	})

	rw.WriteHeader(http.StatusAccepted)
}

// LogoutHandler clears the session cookie rather than letting it expire.
func (h *Handler) LogoutHandler(rw http.ResponseWriter, r *http.Request) {
	http.SetCookie(rw, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	redirect := r.URL.Query().Get("redirect")
	if redirect == "" {
		redirect = "/"
	}
	http.Redirect(rw, r, redirect, http.StatusSeeOther)
}
