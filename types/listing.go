package types

import "time"

// Listing represents a single classified advertisement on the board.
type Listing struct {
	// ID is the unique identifier of the listing, assigned on creation.
	ID int `json:"id" db:"id"`

	// Title is the short headline shown in the board index.
	Title string `json:"title" db:"title"`

	// Description contains the full advertisement text.
	Description string `json:"description" db:"description"`

	// Price is the asking price. Zero means "not stated".
	Price float64 `json:"price" db:"price"`

	// Category is a free-form grouping label chosen by the author.
	Category string `json:"category" db:"category"`

	// OwnerID is the ID of the user that created the listing. It is
	// written once at creation and never updated afterwards; every
	// mutation of a listing is gated on this field.
	OwnerID int `json:"owner_id" db:"owner_id"`

	// CreatedAt is the timestamp at which the listing was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ListingFields are the author-editable attributes of a listing.
// OwnerID is deliberately absent: it is bound from the authenticated
// caller at creation time and cannot be supplied through a form.
type ListingFields struct {
	Title       string
	Description string
	Price       float64
	Category    string
}
