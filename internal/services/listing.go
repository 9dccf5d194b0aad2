package services

import (
	"context"

	"github.com/adboard/server/types"
)

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	List(ctx context.Context) ([]types.Listing, error)
	Get(ctx context.Context, id int) (types.Listing, error)
	Create(ctx context.Context, listing types.Listing) (types.Listing, error)
	Update(ctx context.Context, id int, fields types.ListingFields) (types.Listing, error)
	Delete(ctx context.Context, id int) error
}

// ListingService encapsulates listing use-cases. Every mutation of an
// existing listing goes through the single ownership gate in
// authorized; there is no other mutation path.
type ListingService struct {
	repo ListingRepository
}

func NewListingService(repo ListingRepository) *ListingService {
	return &ListingService{repo: repo}
}

// List returns all listings in insertion order.
func (s *ListingService) List(ctx context.Context) ([]types.Listing, error) {
	return s.repo.List(ctx)
}

func (s *ListingService) Get(ctx context.Context, id int) (types.Listing, error) {
	return s.repo.Get(ctx, id)
}

// Create persists a new listing owned by ownerID. The owner is bound
// here, from the authenticated caller, never from submitted fields.
func (s *ListingService) Create(ctx context.Context, ownerID int, fields types.ListingFields) (types.Listing, error) {
	return s.repo.Create(ctx, types.Listing{
		Title:       fields.Title,
		Description: fields.Description,
		Price:       fields.Price,
		Category:    fields.Category,
		OwnerID:     ownerID,
	})
}

// Update mutates the editable fields of a listing after the ownership
// gate passes. The stored owner is never touched.
func (s *ListingService) Update(ctx context.Context, id, callerID int, fields types.ListingFields) (types.Listing, error) {
	if _, err := s.authorized(ctx, id, callerID); err != nil {
		return types.Listing{}, err
	}
	return s.repo.Update(ctx, id, fields)
}

// Delete removes a listing after the ownership gate passes.
func (s *ListingService) Delete(ctx context.Context, id, callerID int) error {
	if _, err := s.authorized(ctx, id, callerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// GetOwned resolves a listing for a mutation page. It returns
// store.ErrNotFound when the listing does not exist and ErrNotOwned
// when it belongs to someone else.
func (s *ListingService) GetOwned(ctx context.Context, id, callerID int) (types.Listing, error) {
	return s.authorized(ctx, id, callerID)
}

func (s *ListingService) authorized(ctx context.Context, id, callerID int) (types.Listing, error) {
	listing, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Listing{}, err
	}
	if listing.OwnerID != callerID {
		return types.Listing{}, ErrNotOwned
	}
	return listing, nil
}
