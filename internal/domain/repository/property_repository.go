package repository

import (
	"context"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
)

// PropertyRepository defines persistence for listings and their galleries.
type PropertyRepository interface {
	Create(ctx context.Context, p *entity.Property) error
	GetByID(ctx context.Context, id string) (*entity.Property, error)
	// FindOwnedBy looks a property up inside the owner's scope. A property
	// that exists but belongs to someone else yields ErrNotFound.
	FindOwnedBy(ctx context.Context, ownerID, id string) (*entity.Property, error)
	Update(ctx context.Context, p *entity.Property) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Property, error)
	IDsByOwner(ctx context.Context, ownerID string) ([]string, error)

	Images(ctx context.Context, propertyID string) ([]entity.PropertyImage, error)
	AddImage(ctx context.Context, img *entity.PropertyImage) error
	DeleteImage(ctx context.Context, propertyID, imageID string) error
	SetFeaturedImage(ctx context.Context, id, ref string) error

	SearchAvailable(ctx context.Context, q ListingQuery) ([]entity.Property, error)
	CountAvailable(ctx context.Context, f ListingFilter) (int, error)
}
