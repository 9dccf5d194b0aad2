package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adboard/server/internal/services"
	"github.com/adboard/server/internal/store"
	"github.com/adboard/server/internal/web"
	"github.com/adboard/server/types"
)

// ListingHandler provides the board pages: the public list and detail
// views and the ownership-gated add/edit/delete forms.
type ListingHandler struct {
	listingService *services.ListingService
	view           *web.Renderer
}

// NewListingHandler constructs a handler with the provided dependencies.
func NewListingHandler(listingService *services.ListingService, view *web.Renderer) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		view:           view,
	}
}

// ListingRouter registers the board routes on the given router. The
// mutation routes are wrapped in authMiddleware so the authentication
// gate runs before any handler logic.
func ListingRouter(r chi.Router, handler *ListingHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/", handler.List)
	r.With(authMiddleware).Get("/add/", handler.Add)
	r.With(authMiddleware).Post("/add/", handler.Add)
	r.Get("/{listingID}/", handler.Detail)
	r.With(authMiddleware).Get("/{listingID}/edit/", handler.Edit)
	r.With(authMiddleware).Post("/{listingID}/edit/", handler.Edit)
	r.With(authMiddleware).Get("/{listingID}/delete/", handler.Delete)
	r.With(authMiddleware).Post("/{listingID}/delete/", handler.Delete)
}

// List shows all listings in insertion order. No authentication
// required.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listingService.List(r.Context())
	if err != nil {
		renderServerError(h.view, w, r, err)
		return
	}

	h.view.Render(w, http.StatusOK, "list.html", pageData(r, map[string]any{
		"Listings": listings,
	}))
}

// Detail shows a single listing, or the not-found page. No
// authentication required.
func (h *ListingHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := parseListingID(r)
	if err != nil {
		renderNotFound(h.view, w, r)
		return
	}

	listing, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			renderNotFound(h.view, w, r)
			return
		}
		renderServerError(h.view, w, r, err)
		return
	}

	user, _ := CurrentUser(r.Context())
	h.view.Render(w, http.StatusOK, "detail.html", pageData(r, map[string]any{
		"Listing": listing,
		"IsOwner": user.ID != 0 && user.ID == listing.OwnerID,
	}))
}

// Add serves the creation form and creates a listing owned by the
// caller on a valid submission.
func (h *ListingHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		// RequireAuth runs first; this only guards misconfiguration.
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}

	runForm(h.view, w, r, formConfig{
		template: "listing_form.html",
		initial: func(r *http.Request) map[string]any {
			return h.listingFormData(r, ListingForm{}, "/add/", "Post a listing")
		},
		submit: func(r *http.Request) (string, map[string]any, error) {
			form := parseListingForm(r)
			if !form.Validate() {
				return "", h.listingFormData(r, form, "/add/", "Post a listing"), nil
			}

			if _, err := h.listingService.Create(r.Context(), user.ID, form.Fields()); err != nil {
				return "", nil, err
			}
			return "/", nil, nil
		},
	})
}

// Edit serves the prefilled edit form for the owner and persists the
// changed fields on a valid submission. Missing and not-owned
// listings are indistinguishable: both redirect to the list.
func (h *ListingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user, listing, ok := h.ownedListing(w, r)
	if !ok {
		return
	}

	action := fmt.Sprintf("/%d/edit/", listing.ID)

	runForm(h.view, w, r, formConfig{
		template: "listing_form.html",
		initial: func(r *http.Request) map[string]any {
			return h.listingFormData(r, listingFormFromFields(listing), action, "Edit listing")
		},
		submit: func(r *http.Request) (string, map[string]any, error) {
			form := parseListingForm(r)
			if !form.Validate() {
				return "", h.listingFormData(r, form, action, "Edit listing"), nil
			}

			if _, err := h.listingService.Update(r.Context(), listing.ID, user.ID, form.Fields()); err != nil {
				if isSilentRedirect(err) {
					return "/", nil, nil
				}
				return "", nil, err
			}
			return fmt.Sprintf("/%d/", listing.ID), nil, nil
		},
	})
}

// Delete is the two-step removal: a non-submitting request shows the
// confirmation page, the confirming POST deletes. A listing that
// vanished between the two steps redirects silently, same as one that
// never existed.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, listing, ok := h.ownedListing(w, r)
	if !ok {
		return
	}

	runForm(h.view, w, r, formConfig{
		template: "delete_confirm.html",
		initial: func(r *http.Request) map[string]any {
			return pageData(r, map[string]any{"Listing": listing})
		},
		submit: func(r *http.Request) (string, map[string]any, error) {
			if err := h.listingService.Delete(r.Context(), listing.ID, user.ID); err != nil {
				if isSilentRedirect(err) {
					return "/", nil, nil
				}
				return "", nil, err
			}
			return "/", nil, nil
		},
	})
}

// ownedListing resolves the listing for a mutation page and applies
// the ownership gate. When the gate fails it redirects to the list
// and reports ok=false; the response is identical whether the listing
// is missing or owned by someone else.
func (h *ListingHandler) ownedListing(w http.ResponseWriter, r *http.Request) (types.User, types.Listing, bool) {
	user, authed := CurrentUser(r.Context())
	if !authed {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return types.User{}, types.Listing{}, false
	}

	id, err := parseListingID(r)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return types.User{}, types.Listing{}, false
	}

	listing, err := h.listingService.GetOwned(r.Context(), id, user.ID)
	if err != nil {
		if isSilentRedirect(err) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return types.User{}, types.Listing{}, false
		}
		renderServerError(h.view, w, r, err)
		return types.User{}, types.Listing{}, false
	}

	return user, listing, true
}

func (h *ListingHandler) listingFormData(r *http.Request, form ListingForm, action, heading string) map[string]any {
	return pageData(r, map[string]any{
		"Form":    form,
		"Action":  action,
		"Heading": heading,
	})
}

// isSilentRedirect reports whether a mutation failure must be hidden
// behind a redirect to the list, so probing callers cannot tell a
// missing listing from one they do not own.
func isSilentRedirect(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, services.ErrNotOwned)
}
