package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/adboard/server/internal/services"
	"github.com/adboard/server/internal/web"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	sessionCookieName = "session"
	loginPath         = "/login/"
)

// AuthHandler provides the signup, login and logout pages and the
// session middleware. Sessions are JWTs carried in an HttpOnly cookie.
type AuthHandler struct {
	userService  *services.UserService
	view         *web.Renderer
	secret       []byte
	tokenTTL     time.Duration
	cookieSecure bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, view *web.Renderer, jwtSecret string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		view:         view,
		secret:       []byte(jwtSecret),
		tokenTTL:     defaultTokenTTL,
		cookieSecure: cookieSecure,
	}
}

// AuthRouter registers the account routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/signup/", handler.Signup)
	r.Post("/signup/", handler.Signup)
	r.Get(loginPath, handler.Login)
	r.Post(loginPath, handler.Login)
	r.Post("/logout/", handler.Logout)
}

// WithUser resolves the session cookie and stores the user in the
// request context. Requests without a valid session proceed as
// anonymous.
func (h *AuthHandler) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := parseSessionToken(cookie.Value, h.secret)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := h.userService.GetByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth redirects anonymous requests to the login page before
// any handler logic runs. The requested path is preserved in ?next=.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			target := loginPath + "?next=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Signup serves the registration form and creates the account on a
// valid submission, logging the new user in immediately.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	runForm(h.view, w, r, formConfig{
		template: "signup.html",
		initial: func(r *http.Request) map[string]any {
			return pageData(r, map[string]any{"Form": SignupForm{}})
		},
		submit: func(r *http.Request) (string, map[string]any, error) {
			form := parseSignupForm(r)
			if !form.Validate() {
				return "", h.signupRedisplay(r, form), nil
			}

			user, err := h.userService.Register(r.Context(), form.Username, form.Password)
			if err != nil {
				if errors.Is(err, services.ErrUsernameTaken) {
					form.Errors["username"] = "This username is already taken."
					return "", h.signupRedisplay(r, form), nil
				}
				return "", nil, err
			}

			if err := h.setSessionCookie(w, user.ID); err != nil {
				return "", nil, err
			}
			return "/", nil, nil
		},
	})
}

func (h *AuthHandler) signupRedisplay(r *http.Request, form SignupForm) map[string]any {
	form.Password = ""
	form.Confirm = ""
	return pageData(r, map[string]any{"Form": form})
}

// Login serves the login form and starts a session on valid
// credentials, honoring a same-site ?next= target.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	runForm(h.view, w, r, formConfig{
		template: "login.html",
		initial: func(r *http.Request) map[string]any {
			return pageData(r, map[string]any{
				"Form": LoginForm{},
				"Next": sanitizeNext(r.URL.Query().Get("next")),
			})
		},
		submit: func(r *http.Request) (string, map[string]any, error) {
			form := parseLoginForm(r)
			next := sanitizeNext(r.PostFormValue("next"))
			if !form.Validate() {
				return "", h.loginRedisplay(r, form, next), nil
			}

			user, err := h.userService.Authenticate(r.Context(), form.Username, form.Password)
			if err != nil {
				if errors.Is(err, services.ErrInvalidCredentials) {
					form.Errors["form"] = "Unknown username or wrong password."
					return "", h.loginRedisplay(r, form, next), nil
				}
				return "", nil, err
			}

			if err := h.setSessionCookie(w, user.ID); err != nil {
				return "", nil, err
			}
			if next == "" {
				next = "/"
			}
			return next, nil, nil
		},
	})
}

func (h *AuthHandler) loginRedisplay(r *http.Request, form LoginForm, next string) map[string]any {
	form.Password = ""
	return pageData(r, map[string]any{"Form": form, "Next": next})
}

// Logout clears the session cookie and redirects home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, userID int) error {
	token, err := issueSessionToken(userID, h.secret, h.tokenTTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// sanitizeNext keeps redirect targets on this site. Anything that is
// not a plain absolute path is discarded.
func sanitizeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

func issueSessionToken(userID int, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parseSessionToken(tokenString string, secret []byte) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}
	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, errors.New("invalid subject")
	}
	return userID, nil
}
