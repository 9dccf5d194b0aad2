package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adboard/server/types"
)

// ListingRepository handles persistence for listings.
type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// List returns all listings in insertion order.
func (r *ListingRepository) List(ctx context.Context) ([]types.Listing, error) {
	const query = `
		SELECT id, title, description, price, category, owner_id, created_at, updated_at
		FROM listings
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]types.Listing, 0)
	for rows.Next() {
		var listing types.Listing
		if err := rows.Scan(
			&listing.ID,
			&listing.Title,
			&listing.Description,
			&listing.Price,
			&listing.Category,
			&listing.OwnerID,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *ListingRepository) Get(ctx context.Context, id int) (types.Listing, error) {
	const query = `
		SELECT id, title, description, price, category, owner_id, created_at, updated_at
		FROM listings
		WHERE id = $1`
	var listing types.Listing
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&listing.ID,
		&listing.Title,
		&listing.Description,
		&listing.Price,
		&listing.Category,
		&listing.OwnerID,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Listing{}, ErrNotFound
		}
		return types.Listing{}, err
	}
	return listing, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing types.Listing) (types.Listing, error) {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	const query = `
		INSERT INTO listings (title, description, price, category, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.Category,
		listing.OwnerID,
		listing.CreatedAt,
		listing.UpdatedAt,
	).Scan(&listing.ID); err != nil {
		return types.Listing{}, err
	}
	return listing, nil
}

// Update persists the editable fields of a listing. The owner_id
// column is intentionally absent from the statement.
func (r *ListingRepository) Update(ctx context.Context, id int, fields types.ListingFields) (types.Listing, error) {
	updatedAt := time.Now()

	const query = `
		UPDATE listings
		SET title = $1,
			description = $2,
			price = $3,
			category = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		fields.Title,
		fields.Description,
		fields.Price,
		fields.Category,
		updatedAt,
		id,
	)
	if err != nil {
		return types.Listing{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Listing{}, err
	}
	if affected == 0 {
		return types.Listing{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *ListingRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM listings WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
