package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adboard/server/internal/services"
	"github.com/adboard/server/internal/store"
	"github.com/adboard/server/internal/web"
	"github.com/adboard/server/types"
)

const testJWTSecret = "test-secret"

// fakeListingRepo is an in-memory ListingRepository preserving
// insertion order.
type fakeListingRepo struct {
	mu       sync.Mutex
	nextID   int
	listings []types.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{nextID: 1}
}

func (f *fakeListingRepo) List(ctx context.Context) ([]types.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Listing, len(f.listings))
	copy(out, f.listings)
	return out, nil
}

func (f *fakeListingRepo) Get(ctx context.Context, id int) (types.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, listing := range f.listings {
		if listing.ID == id {
			return listing, nil
		}
	}
	return types.Listing{}, store.ErrNotFound
}

func (f *fakeListingRepo) Create(ctx context.Context, listing types.Listing) (types.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing.ID = f.nextID
	f.nextID++
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	f.listings = append(f.listings, listing)
	return listing, nil
}

func (f *fakeListingRepo) Update(ctx context.Context, id int, fields types.ListingFields) (types.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, listing := range f.listings {
		if listing.ID == id {
			listing.Title = fields.Title
			listing.Description = fields.Description
			listing.Price = fields.Price
			listing.Category = fields.Category
			listing.UpdatedAt = time.Now()
			f.listings[i] = listing
			return listing, nil
		}
	}
	return types.Listing{}, store.ErrNotFound
}

func (f *fakeListingRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, listing := range f.listings {
		if listing.ID == id {
			f.listings = append(f.listings[:i], f.listings[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeListingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listings)
}

func (f *fakeListingRepo) seed(t *testing.T, listing types.Listing) types.Listing {
	t.Helper()
	created, err := f.Create(context.Background(), listing)
	if err != nil {
		t.Fatal(err)
	}
	return created
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.nextID
	f.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) seed(t *testing.T, user types.User) types.User {
	t.Helper()
	created, err := f.Create(context.Background(), user)
	if err != nil {
		t.Fatal(err)
	}
	return created
}

// newTestRouter wires real services and the real renderer over the
// fakes, mirroring the wiring in internal/server (minus CSRF, which
// has its own tests).
func newTestRouter(t *testing.T, listingRepo *fakeListingRepo, userRepo *fakeUserRepo) *chi.Mux {
	t.Helper()

	view, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	userService := services.NewUserService(userRepo)
	listingService := services.NewListingService(listingRepo)

	authHandler := NewAuthHandler(userService, view, testJWTSecret, false)
	listingHandler := NewListingHandler(listingService, view)

	router := chi.NewRouter()
	router.Use(authHandler.WithUser)
	AuthRouter(router, authHandler)
	ListingRouter(router, listingHandler, RequireAuth)
	return router
}

// sessionCookieFor returns a valid session cookie for the given user.
func sessionCookieFor(t *testing.T, userID int) *http.Cookie {
	t.Helper()
	token, err := issueSessionToken(userID, []byte(testJWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issueSessionToken: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: token}
}

func doGet(router http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doPost(router http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
