package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/adboard/server/types"
)

const (
	maxTitleLen    = 200
	maxCategoryLen = 100
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ListingForm holds the raw submitted values of the add/edit form
// plus per-field validation messages, so a failed submission can be
// redisplayed exactly as the user typed it.
type ListingForm struct {
	Title       string
	Description string
	Price       string
	Category    string
	Errors      map[string]string

	price float64
}

func parseListingForm(r *http.Request) ListingForm {
	return ListingForm{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Price:       strings.TrimSpace(r.PostFormValue("price")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
	}
}

// listingFormFromFields pre-populates the form with stored values for
// the edit page.
func listingFormFromFields(listing types.Listing) ListingForm {
	form := ListingForm{
		Title:       listing.Title,
		Description: listing.Description,
		Category:    listing.Category,
	}
	if listing.Price != 0 {
		form.Price = strconv.FormatFloat(listing.Price, 'f', 2, 64)
	}
	return form
}

// Validate checks the form and fills Errors. It returns true when the
// submission is acceptable.
func (f *ListingForm) Validate() bool {
	f.Errors = make(map[string]string)

	if f.Title == "" {
		f.Errors["title"] = "Title is required."
	} else if len(f.Title) > maxTitleLen {
		f.Errors["title"] = fmt.Sprintf("Title must be at most %d characters.", maxTitleLen)
	}

	if f.Description == "" {
		f.Errors["description"] = "Description is required."
	}

	if f.Price != "" {
		price, err := strconv.ParseFloat(f.Price, 64)
		if err != nil || price < 0 {
			f.Errors["price"] = "Price must be a non-negative number."
		} else {
			f.price = price
		}
	}

	if len(f.Category) > maxCategoryLen {
		f.Errors["category"] = fmt.Sprintf("Category must be at most %d characters.", maxCategoryLen)
	}

	return len(f.Errors) == 0
}

// Fields converts a validated form into the persistable field set.
func (f *ListingForm) Fields() types.ListingFields {
	return types.ListingFields{
		Title:       f.Title,
		Description: f.Description,
		Price:       f.price,
		Category:    f.Category,
	}
}

// SignupForm holds the submitted registration values. Passwords are
// never echoed back on redisplay.
type SignupForm struct {
	Username string
	Password string
	Confirm  string
	Errors   map[string]string
}

func parseSignupForm(r *http.Request) SignupForm {
	return SignupForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm"),
	}
}

func (f *SignupForm) Validate() bool {
	f.Errors = make(map[string]string)

	switch {
	case f.Username == "":
		f.Errors["username"] = "Username is required."
	case len(f.Username) < minUsernameLen || len(f.Username) > maxUsernameLen:
		f.Errors["username"] = fmt.Sprintf("Username must be %d to %d characters.", minUsernameLen, maxUsernameLen)
	case !usernamePattern.MatchString(f.Username):
		f.Errors["username"] = "Username may only contain letters, digits and underscores."
	}

	if len(f.Password) < minPasswordLen {
		f.Errors["password"] = fmt.Sprintf("Password must be at least %d characters.", minPasswordLen)
	} else if f.Password != f.Confirm {
		f.Errors["confirm"] = "Passwords do not match."
	}

	return len(f.Errors) == 0
}

// LoginForm holds the submitted login values. The "form" key carries
// the non-field error shown when credentials do not match.
type LoginForm struct {
	Username string
	Password string
	Errors   map[string]string
}

func parseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

func (f *LoginForm) Validate() bool {
	f.Errors = make(map[string]string)

	if f.Username == "" {
		f.Errors["username"] = "Username is required."
	}
	if f.Password == "" {
		f.Errors["password"] = "Password is required."
	}

	return len(f.Errors) == 0
}
