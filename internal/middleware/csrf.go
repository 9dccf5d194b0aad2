// Package middleware provides HTTP middleware shared across handlers.
package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
)

const (
	// csrfCookieName is the cookie holding the CSRF token.
	csrfCookieName = "csrf_token"

	// csrfFieldName is the hidden form field carrying the token back
	// on state-changing requests.
	csrfFieldName = "csrf_token"
)

type csrfContextKey struct{}

// CSRF returns a double-submit CSRF middleware. Safe methods (GET,
// HEAD, OPTIONS) receive a token cookie if they do not have one;
// state-changing methods must echo the cookie value in the
// csrf_token form field.
func CSRF(cookieSecure bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(csrfCookieName); err == nil {
				token = cookie.Value
			}

			if isSafeMethod(r.Method) {
				if token == "" {
					generated, err := generateCSRFToken()
					if err != nil {
						slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
						http.Error(w, "internal server error", http.StatusInternalServerError)
						return
					}
					token = generated
					http.SetCookie(w, &http.Cookie{
						Name:     csrfCookieName,
						Value:    token,
						Path:     "/",
						MaxAge:   86400,
						HttpOnly: false,
						Secure:   cookieSecure,
						SameSite: http.SameSiteLaxMode,
					})
				}
			} else {
				formToken := r.PostFormValue(csrfFieldName)
				if token == "" || formToken == "" || token != formToken {
					slog.Warn("CSRF validation failed",
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					http.Error(w, "CSRF token validation failed", http.StatusForbidden)
					return
				}
			}

			ctx := context.WithValue(r.Context(), csrfContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CSRFToken returns the token stored by the CSRF middleware, for
// embedding into rendered forms.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfContextKey{}).(string)
	return token
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
