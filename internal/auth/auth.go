// Package auth classifies a request's credentials against the site config.
// Two independent trust mechanisms exist: the shared upload token header and
// the user/password session cookie.
package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"sxfs/internal/config"
)

const (
	// TokenHeader carries the shared upload secret.
	TokenHeader = "X-Upload-Token"
	// CookieName is the session cookie holding base64url(username:password).
	CookieName = "auth"
)

var (
	// ErrInvalidToken means the token header was present but wrong.
	ErrInvalidToken = errors.New("auth: invalid upload token")
	// ErrMalformedCookie means the session cookie could not be decoded. It
	// is distinct from absent credentials and maps to a client error, not a
	// login prompt.
	ErrMalformedCookie = errors.New("auth: malformed session cookie")
	// ErrUnknownUser means the cookie decoded cleanly but matched no
	// configured user.
	ErrUnknownUser = errors.New("auth: unknown user")
)

// Kind is the classification of a request's credentials.
type Kind int

const (
	// Anonymous means no credentials were supplied. The route decides
	// whether that is acceptable.
	Anonymous Kind = iota
	// Token means the request carried the configured upload secret.
	Token
	// User means the session cookie matched a configured user.
	User
)

// Outcome is the result of a successful classification.
type Outcome struct {
	Kind Kind
	User config.User
}

// Authenticated reports whether the request carried valid credentials of
// either kind.
func (o Outcome) Authenticated() bool {
	return o.Kind == Token || o.Kind == User
}

// Authorize evaluates a request's headers and cookies against the site
// config. The token header is checked first; a present but mismatched header
// is rejected without falling through to the cookie. Presence is what
// matters: an empty header value is still a wrong token, not an absent one.
func Authorize(r *http.Request, site *config.Site) (Outcome, error) {
	if values := r.Header.Values(TokenHeader); len(values) > 0 {
		if values[0] == site.UploadToken {
			return Outcome{Kind: Token}, nil
		}
		return Outcome{}, ErrInvalidToken
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Outcome{Kind: Anonymous}, nil
	}

	username, password, err := DecodeCookie(cookie.Value)
	if err != nil {
		return Outcome{}, err
	}

	user, ok := site.FindUser(username, password)
	if !ok {
		return Outcome{}, ErrUnknownUser
	}

	return Outcome{Kind: User, User: user}, nil
}

// EncodeCookie builds the session cookie value for a credential pair.
func EncodeCookie(username, password string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(username + ":" + password))
}

// DecodeCookie splits a session cookie value back into its credential pair.
// The password may itself contain colons; only the first one separates the
// fields.
func DecodeCookie(value string) (username, password string, err error) {
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", "", ErrMalformedCookie
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", ErrMalformedCookie
	}

	return username, password, nil
}

type contextKey struct{}

// NewContext attaches an authorization outcome to a request context.
func NewContext(ctx context.Context, outcome Outcome) context.Context {
	return context.WithValue(ctx, contextKey{}, outcome)
}

// FromContext retrieves the outcome placed by the auth middleware. A missing
// outcome is treated as anonymous.
func FromContext(ctx context.Context) Outcome {
	outcome, ok := ctx.Value(contextKey{}).(Outcome)
	if !ok {
		return Outcome{Kind: Anonymous}
	}
	return outcome
}
