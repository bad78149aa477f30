package repository

import (
	"context"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
)

// Mailbox selects which side of the inquiry relation a listing shows.
type Mailbox string

const (
	MailboxReceived Mailbox = "received"
	MailboxSent     Mailbox = "sent"
)

// ParseMailbox defaults to the received box for empty or unknown input.
func ParseMailbox(s string) Mailbox {
	if Mailbox(s) == MailboxSent {
		return MailboxSent
	}
	return MailboxReceived
}

// InquiryQuery pages through one user's mailbox, newest first.
type InquiryQuery struct {
	Box        Mailbox
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// InquiryRepository defines persistence for inquiries.
type InquiryRepository interface {
	Create(ctx context.Context, i *entity.Inquiry) error
	// FindVisibleTo returns the inquiry only when viewer owns the property or
	// sent the inquiry. lock takes a row lock for the enclosing transaction.
	FindVisibleTo(ctx context.Context, viewerID, id string, lock bool) (*entity.InquiryView, error)
	// MarkRead flips is_read and reports whether the row changed.
	MarkRead(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, q InquiryQuery) ([]entity.InquiryView, error)
	Count(ctx context.Context, box Mailbox, userID string) (int, error)
	CountUnreadForProperty(ctx context.Context, propertyID string) (int, error)
}
