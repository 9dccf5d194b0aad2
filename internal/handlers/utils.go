package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adboard/server/internal/middleware"
	"github.com/adboard/server/internal/web"
	"github.com/adboard/server/types"
)

type contextKey string

const contextUserKey contextKey = "user"

// CurrentUser returns the authenticated user stored by WithUser, or
// ok=false for anonymous requests.
func CurrentUser(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok
}

func parseListingID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "listingID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid listing id")
	}
	return id, nil
}

// pageData builds the base render context every page shares: the
// current user (if any) and the CSRF token for forms.
func pageData(r *http.Request, data map[string]any) map[string]any {
	if data == nil {
		data = make(map[string]any)
	}
	if user, ok := CurrentUser(r.Context()); ok {
		data["User"] = user
	}
	data["CSRFToken"] = middleware.CSRFToken(r.Context())
	return data
}

func renderNotFound(view *web.Renderer, w http.ResponseWriter, r *http.Request) {
	view.Render(w, http.StatusNotFound, "notfound.html", pageData(r, nil))
}

func renderServerError(view *web.Renderer, w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	view.Render(w, http.StatusInternalServerError, "error.html", pageData(r, nil))
}
