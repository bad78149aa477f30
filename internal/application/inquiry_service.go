package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	repo "github.com/oksasatya/go-realestate-listings/internal/domain/repository"
	"github.com/oksasatya/go-realestate-listings/pkg/mailer/templates"
)

const inquiryPageSize = 20

// InquiryService is the buyer-to-owner mailbox.
type InquiryService struct {
	d   Deps
	log *logrus.Logger
}

func NewInquiryService(d Deps) *InquiryService {
	return &InquiryService{d: d, log: d.logger()}
}

// InquiryInput fields left empty are filled from the sender's account
// before validation.
type InquiryInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"max=20"`
	Message string `json:"message" validate:"required"`
}

// InquiryResult carries the created inquiry. Warning is set when the owner
// could not be notified; the inquiry is stored regardless.
type InquiryResult struct {
	Inquiry *entity.Inquiry
	Warning *DeliveryError
}

func (s *InquiryService) Create(ctx context.Context, senderID, propertyID string, in InquiryInput) (*InquiryResult, error) {
	if senderID == "" {
		return nil, Authorize(nil, ActionCreateInquiry, Subject{})
	}
	sender, err := s.d.Users.GetAccount(ctx, senderID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	p, err := s.d.Properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, notFound(err, "property")
	}
	if err := Authorize(sender, ActionCreateInquiry, Subject{Property: p}); err != nil {
		return nil, err
	}

	prefill := prefillFor(sender)
	in.Name = firstNonEmpty(in.Name, prefill.Name)
	in.Email = firstNonEmpty(in.Email, prefill.Email)
	in.Phone = firstNonEmpty(in.Phone, prefill.Phone)
	in.Message = strings.TrimSpace(in.Message)
	if err := asValidationError(fieldErrors(in)); err != nil {
		return nil, err
	}

	inq := &entity.Inquiry{
		PropertyID: p.ID,
		UserID:     sender.ID(),
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Message:    in.Message,
	}
	if err := s.d.Inquiries.Create(ctx, inq); err != nil {
		return nil, notFound(err, "property")
	}
	inquiriesCreated.Add(1)
	s.log.WithFields(logrus.Fields{"inquiry_id": inq.ID, "property_id": p.ID}).Info("inquiry created")

	res := &InquiryResult{Inquiry: inq}
	if err := s.notifyOwner(ctx, p, inq); err != nil {
		notificationFailures.Add(1)
		s.log.WithError(err).WithField("inquiry_id", inq.ID).Warn("owner notification failed")
		res.Warning = &DeliveryError{Err: err}
	}
	return res, nil
}

func (s *InquiryService) notifyOwner(ctx context.Context, p *entity.Property, inq *entity.Inquiry) error {
	owner, err := s.d.Users.GetByID(ctx, p.OwnerID)
	if err != nil {
		return err
	}
	if owner.Email == "" {
		return nil
	}
	url := strings.TrimRight(s.d.Mail.SiteURL, "/") + "/properties/" + p.ID
	data := templates.NewInquiryReceivedData(s.d.Mail.Brand, owner.FullName(), owner.Email,
		p.Title, url, inq.Name, inq.Email, inq.Phone, inq.Message,
		templates.WithTime(inq.CreatedAt))
	return sendTemplate(ctx, s.d, templates.InquiryReceived, data, owner.Email)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// InquiryPage is one page of a mailbox plus the size of both boxes.
type InquiryPage struct {
	Box           repo.Mailbox
	Items         []entity.InquiryView
	Pagination    Page
	ReceivedCount int
	SentCount     int
}

// List pages through the user's received or sent inquiries, newest first.
// Unknown boxes fall back to received.
func (s *InquiryService) List(ctx context.Context, userID, box, page string) (*InquiryPage, error) {
	mb := repo.ParseMailbox(box)
	received, err := s.d.Inquiries.Count(ctx, repo.MailboxReceived, userID)
	if err != nil {
		return nil, err
	}
	sent, err := s.d.Inquiries.Count(ctx, repo.MailboxSent, userID)
	if err != nil {
		return nil, err
	}
	total := received
	if mb == repo.MailboxSent {
		total = sent
	}
	pg := paginate(total, inquiryPageSize, parsePage(page))
	items, err := s.d.Inquiries.List(ctx, repo.InquiryQuery{
		Box:    mb,
		UserID: userID,
		Limit:  pg.Size,
		Offset: pg.Offset(),
	})
	if err != nil {
		return nil, err
	}
	return &InquiryPage{Box: mb, Items: items, Pagination: pg, ReceivedCount: received, SentCount: sent}, nil
}

// Detail shows one inquiry to its property owner or its sender. The first
// view by the owner marks it read, in the same transaction as the read.
func (s *InquiryService) Detail(ctx context.Context, viewerID, id string) (*entity.InquiryView, error) {
	var out *entity.InquiryView
	err := s.d.withinTx(ctx, func(ctx context.Context) error {
		v, err := s.d.Inquiries.FindVisibleTo(ctx, viewerID, id, true)
		if err != nil {
			return notFound(err, "inquiry")
		}
		viewer, err := s.d.Users.GetAccount(ctx, viewerID)
		if err != nil {
			return notFound(err, "inquiry")
		}
		if err := Authorize(viewer, ActionViewInquiry, Subject{Inquiry: v}); err != nil {
			return err
		}
		if v.PropertyOwner() == viewer.ID() && !v.IsRead {
			changed, err := s.d.Inquiries.MarkRead(ctx, v.ID)
			if err != nil {
				return err
			}
			v.IsRead = true
			if changed {
				s.log.WithField("inquiry_id", v.ID).Debug("inquiry marked read")
			}
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
