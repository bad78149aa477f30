package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	repo "github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

var ErrMediaUnavailable = errors.New("media storage not configured")

// PropertyService manages listings and their galleries.
type PropertyService struct {
	d   Deps
	log *logrus.Logger
}

func NewPropertyService(d Deps) *PropertyService {
	return &PropertyService{d: d, log: d.logger()}
}

// PropertyInput is shared by create and update. An empty status means
// AVAILABLE on create and "unchanged" on update.
type PropertyInput struct {
	Title        string           `json:"title" validate:"required,max=200"`
	Description  string           `json:"description" validate:"required"`
	Price        *decimal.Decimal `json:"price" validate:"required"`
	Address      string           `json:"address" validate:"required,max=300"`
	City         string           `json:"city" validate:"required,max=100"`
	State        string           `json:"state" validate:"required,max=100"`
	Zipcode      string           `json:"zipcode" validate:"required,max=20"`
	Bedrooms     int              `json:"bedrooms" validate:"min=0"`
	Bathrooms    *decimal.Decimal `json:"bathrooms" validate:"required"`
	Area         int              `json:"area" validate:"gt=0"`
	PropertyType string           `json:"property_type" validate:"required,property_type"`
	Status       string           `json:"status" validate:"omitempty,listing_status"`
}

func (in PropertyInput) validate() error {
	fields := fieldErrors(in)
	checkDecimal(fields, "price", in.Price, entity.PriceDigits, entity.PriceScale)
	checkDecimal(fields, "bathrooms", in.Bathrooms, entity.BathroomDigits, entity.BathroomScale)
	return asValidationError(fields)
}

func checkDecimal(fields map[string]string, name string, d *decimal.Decimal, digits, scale int32) {
	if d == nil {
		return
	}
	if _, bad := fields[name]; bad {
		return
	}
	switch {
	case d.IsNegative():
		fields[name] = "must be greater than or equal to 0"
	case !entity.FitsPrecision(*d, digits, scale):
		fields[name] = fmt.Sprintf("must have at most %d digits with %d decimal places", digits, scale)
	}
}

func (in PropertyInput) apply(p *entity.Property) {
	p.Title = strings.TrimSpace(in.Title)
	p.Description = in.Description
	p.Price = *in.Price
	p.Address = strings.TrimSpace(in.Address)
	p.City = strings.TrimSpace(in.City)
	p.State = strings.TrimSpace(in.State)
	p.Zipcode = strings.TrimSpace(in.Zipcode)
	p.Bedrooms = in.Bedrooms
	p.Bathrooms = *in.Bathrooms
	p.Area = in.Area
	p.PropertyType = entity.PropertyType(in.PropertyType)
	if in.Status != "" {
		p.Status = entity.ListingStatus(in.Status)
	}
}

// Create lists a new property owned by actorID. Only agents may list; the
// role check runs before field validation.
func (s *PropertyService) Create(ctx context.Context, actorID string, in PropertyInput) (*entity.Property, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, ActionCreateProperty, Subject{}); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &entity.Property{OwnerID: actor.ID(), Status: entity.StatusAvailable}
	in.apply(p)
	if err := s.d.Properties.Create(ctx, p); err != nil {
		s.log.WithError(err).WithField("owner_id", actor.ID()).Error("create property failed")
		return nil, err
	}
	s.catalogChanged(ctx, p)
	return p, nil
}

// Update replaces the listing's fields. A property outside the actor's
// scope is reported as not found.
func (s *PropertyService) Update(ctx context.Context, actorID, id string, in PropertyInput) (*entity.Property, error) {
	p, err := s.owned(ctx, actorID, id, ActionUpdateProperty)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.d.Properties.Update(ctx, p); err != nil {
		return nil, notFound(err, "property")
	}
	s.catalogChanged(ctx, p)
	return p, nil
}

// Delete removes the listing; images and inquiries go with it.
func (s *PropertyService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id, ActionDeleteProperty); err != nil {
		return err
	}
	return s.remove(ctx, id)
}

// AdminDelete removes any property regardless of owner.
func (s *PropertyService) AdminDelete(ctx context.Context, id string) error {
	if _, err := s.d.Properties.GetByID(ctx, id); err != nil {
		return notFound(err, "property")
	}
	return s.remove(ctx, id)
}

func (s *PropertyService) remove(ctx context.Context, id string) error {
	if err := s.d.Properties.Delete(ctx, id); err != nil {
		return notFound(err, "property")
	}
	if err := s.d.indexer().Remove(ctx, id); err != nil {
		s.log.WithError(err).WithField("property_id", id).Warn("remove from index failed")
	}
	s.d.cache().Invalidate(ctx)
	s.log.WithField("property_id", id).Info("property deleted")
	return nil
}

// InquiryPrefill holds the sender's own details for the inquiry form.
type InquiryPrefill struct {
	Name  string
	Email string
	Phone string
}

// PropertyDetail is a property with its gallery and what the viewer may do
// with it.
type PropertyDetail struct {
	Property *entity.Property
	Images   []entity.PropertyImage
	IsOwner  bool
	// UnreadInquiries is set for the owner only.
	UnreadInquiries *int
	CanInquire      bool
	Prefill         *InquiryPrefill
	LoginRequired   bool
}

// Detail loads a property for viewerID, which is empty for anonymous viewers.
func (s *PropertyService) Detail(ctx context.Context, viewerID, id string) (*PropertyDetail, error) {
	p, err := s.d.Properties.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "property")
	}
	images, err := s.d.Properties.Images(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := &PropertyDetail{Property: p, Images: images}

	var viewer *entity.Account
	if viewerID != "" {
		viewer, err = s.d.Users.GetAccount(ctx, viewerID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
	}
	switch {
	case viewer == nil:
		out.LoginRequired = true
	case p.OwnedBy(viewer.ID()):
		out.IsOwner = true
		n, err := s.d.Inquiries.CountUnreadForProperty(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out.UnreadInquiries = &n
	default:
		out.CanInquire = true
		out.Prefill = prefillFor(viewer)
	}
	return out, nil
}

// prefillFor derives the inquiry defaults from the account. The name falls
// back to the username and a missing phone stays empty.
func prefillFor(acc *entity.Account) *InquiryPrefill {
	return &InquiryPrefill{
		Name:  acc.User.FullName(),
		Email: acc.User.Email,
		Phone: acc.Profile.Phone,
	}
}

// captionMaxLength matches property_images.caption.
const captionMaxLength = 200

// Upload is a file received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadImage adds a picture to the property's gallery.
func (s *PropertyService) UploadImage(ctx context.Context, actorID, propertyID string, up Upload, caption string) (*entity.PropertyImage, error) {
	p, err := s.owned(ctx, actorID, propertyID, ActionUpdateProperty)
	if err != nil {
		return nil, err
	}
	caption = strings.TrimSpace(caption)
	if utf8.RuneCountInString(caption) > captionMaxLength {
		return nil, newValidationError("caption", fmt.Sprintf("must be at most %d characters long", captionMaxLength))
	}
	url, err := s.store(ctx, fmt.Sprintf("properties/gallery/%s/", p.ID), up)
	if err != nil {
		return nil, err
	}
	img := &entity.PropertyImage{PropertyID: p.ID, Image: url, Caption: caption}
	if err := s.d.Properties.AddImage(ctx, img); err != nil {
		return nil, notFound(err, "property")
	}
	return img, nil
}

// SetFeaturedImage replaces the image shown in the catalog.
func (s *PropertyService) SetFeaturedImage(ctx context.Context, actorID, propertyID string, up Upload) (*entity.Property, error) {
	p, err := s.owned(ctx, actorID, propertyID, ActionUpdateProperty)
	if err != nil {
		return nil, err
	}
	url, err := s.store(ctx, fmt.Sprintf("properties/%s/", p.ID), up)
	if err != nil {
		return nil, err
	}
	if err := s.d.Properties.SetFeaturedImage(ctx, p.ID, url); err != nil {
		return nil, notFound(err, "property")
	}
	p.FeaturedImage = url
	s.catalogChanged(ctx, p)
	return p, nil
}

func (s *PropertyService) DeleteImage(ctx context.Context, actorID, propertyID, imageID string) error {
	p, err := s.owned(ctx, actorID, propertyID, ActionUpdateProperty)
	if err != nil {
		return err
	}
	if err := s.d.Properties.DeleteImage(ctx, p.ID, imageID); err != nil {
		return notFound(err, "image")
	}
	return nil
}

func (s *PropertyService) store(ctx context.Context, prefix string, up Upload) (string, error) {
	if !strings.HasPrefix(up.ContentType, "image/") {
		return "", newValidationError("image", "must be an image")
	}
	if s.d.Media == nil {
		return "", ErrMediaUnavailable
	}
	objectPath := prefix + uuid.NewString() + strings.ToLower(filepath.Ext(up.Filename))
	url, err := s.d.Media.Put(ctx, objectPath, up.ContentType, up.Body)
	if err != nil {
		s.log.WithError(err).WithField("object", objectPath).Error("upload failed")
		return "", err
	}
	return url, nil
}

func (s *PropertyService) actor(ctx context.Context, actorID string) (*entity.Account, error) {
	if actorID == "" {
		return nil, Authorize(nil, ActionCreateProperty, Subject{})
	}
	acc, err := s.d.Users.GetAccount(ctx, actorID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return acc, nil
}

// owned performs the owner-scoped lookup and then runs the gate for action.
func (s *PropertyService) owned(ctx context.Context, actorID, id string, action Action) (*entity.Property, error) {
	p, err := s.d.Properties.FindOwnedBy(ctx, actorID, id)
	if err != nil {
		return nil, notFound(err, "property")
	}
	actor, err := s.d.Users.GetAccount(ctx, actorID)
	if err != nil {
		return nil, notFound(err, "property")
	}
	if err := Authorize(actor, action, Subject{Property: p}); err != nil {
		return nil, err
	}
	return p, nil
}

// catalogChanged keeps the search mirror and the listing cache in step
// with a mutated property. Both are best effort.
func (s *PropertyService) catalogChanged(ctx context.Context, p *entity.Property) {
	var err error
	if p.IsAvailable() {
		err = s.d.indexer().Index(ctx, p)
	} else {
		err = s.d.indexer().Remove(ctx, p.ID)
	}
	if err != nil {
		s.log.WithError(err).WithField("property_id", p.ID).Warn("search index sync failed")
	}
	s.d.cache().Invalidate(ctx)
}
