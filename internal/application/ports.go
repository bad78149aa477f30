package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer"
)

// Notifier delivers one email. Errors are treated as recoverable.
type Notifier interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// MediaStore persists an uploaded file and returns a stable URL for it.
type MediaStore interface {
	Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// PropertyIndexer mirrors available listings to an external index.
type PropertyIndexer interface {
	Index(ctx context.Context, p *entity.Property) error
	Remove(ctx context.Context, id string) error
}

// ListingCache stores rendered listing pages. Invalidate drops every entry.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context)
}

type noopIndexer struct{}

func (noopIndexer) Index(context.Context, *entity.Property) error { return nil }
func (noopIndexer) Remove(context.Context, string) error          { return nil }

type noopCache struct{}

func (noopCache) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (noopCache) Set(context.Context, string, []byte, time.Duration) {}
func (noopCache) Invalidate(context.Context)                         {}
