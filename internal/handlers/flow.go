package handlers

import (
	"net/http"

	"github.com/adboard/server/internal/web"
)

// formConfig parametrizes the display/validate/persist cycle shared
// by every form page. Keeping the cycle in one routine means the
// request-method branching can never diverge between pages.
type formConfig struct {
	// template is the page rendered for both the initial display and
	// a failed submission.
	template string

	// initial returns the render context for a non-submitting request.
	initial func(r *http.Request) map[string]any

	// submit binds, validates and, when valid, persists the
	// submission. On success it returns the redirect target. When the
	// form must be shown again it returns a redisplay context instead.
	// A non-nil error is an unexpected fault, not a validation outcome.
	submit func(r *http.Request) (target string, redisplay map[string]any, err error)
}

// runForm drives a form page: anything but POST renders the initial
// form, a POST is submitted and either redirects, redisplays with
// errors, or fails as a server error.
func runForm(view *web.Renderer, w http.ResponseWriter, r *http.Request, cfg formConfig) {
	if r.Method != http.MethodPost {
		view.Render(w, http.StatusOK, cfg.template, cfg.initial(r))
		return
	}

	target, redisplay, err := cfg.submit(r)
	switch {
	case err != nil:
		renderServerError(view, w, r, err)
	case redisplay != nil:
		view.Render(w, http.StatusUnprocessableEntity, cfg.template, redisplay)
	default:
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
