package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	app "github.com/oksasatya/go-realestate-listings/internal/application"
	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
)

type userDTO struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      entity.Role `json:"role"`
	Phone     string      `json:"phone"`
	Bio       string      `json:"bio"`
	IsAgent   bool        `json:"is_agent"`
	IsBuyer   bool        `json:"is_buyer"`
	CreatedAt time.Time   `json:"created_at"`
}

func toUserDTO(a *entity.Account) userDTO {
	return userDTO{
		ID:        a.User.ID,
		Username:  a.User.Username,
		Email:     a.User.Email,
		FirstName: a.User.FirstName,
		LastName:  a.User.LastName,
		Role:      a.Profile.Role,
		Phone:     a.Profile.Phone,
		Bio:       a.Profile.Bio,
		IsAgent:   a.Profile.IsAgent(),
		IsBuyer:   a.Profile.IsBuyer(),
		CreatedAt: a.User.CreatedAt,
	}
}

type propertyDTO struct {
	ID             string               `json:"id"`
	OwnerID        string               `json:"owner_id"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Price          decimal.Decimal      `json:"price"`
	FormattedPrice string               `json:"formatted_price"`
	Address        string               `json:"address"`
	City           string               `json:"city"`
	State          string               `json:"state"`
	Zipcode        string               `json:"zipcode"`
	Bedrooms       int                  `json:"bedrooms"`
	Bathrooms      decimal.Decimal      `json:"bathrooms"`
	Area           int                  `json:"area"`
	PropertyType   entity.PropertyType  `json:"property_type"`
	Status         entity.ListingStatus `json:"status"`
	FeaturedImage  string               `json:"featured_image,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func toPropertyDTO(p *entity.Property) propertyDTO {
	return propertyDTO{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		FormattedPrice: p.FormattedPrice(),
		Address:        p.Address,
		City:           p.City,
		State:          p.State,
		Zipcode:        p.Zipcode,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		Area:           p.Area,
		PropertyType:   p.PropertyType,
		Status:         p.Status,
		FeaturedImage:  p.FeaturedImage,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toPropertyDTOs(ps []entity.Property) []propertyDTO {
	out := make([]propertyDTO, 0, len(ps))
	for i := range ps {
		out = append(out, toPropertyDTO(&ps[i]))
	}
	return out
}

type imageDTO struct {
	ID         string    `json:"id"`
	Image      string    `json:"image"`
	Caption    string    `json:"caption,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toImageDTO(img *entity.PropertyImage) imageDTO {
	return imageDTO{ID: img.ID, Image: img.Image, Caption: img.Caption, UploadedAt: img.UploadedAt}
}

type prefillDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type propertyDetailDTO struct {
	Property        propertyDTO `json:"property"`
	Images          []imageDTO  `json:"images"`
	IsOwner         bool        `json:"is_owner"`
	UnreadInquiries *int        `json:"unread_inquiries,omitempty"`
	CanInquire      bool        `json:"can_inquire"`
	InquiryPrefill  *prefillDTO `json:"inquiry_prefill,omitempty"`
	LoginRequired   bool        `json:"login_required"`
}

func toPropertyDetailDTO(d *app.PropertyDetail) propertyDetailDTO {
	out := propertyDetailDTO{
		Property:        toPropertyDTO(d.Property),
		Images:          make([]imageDTO, 0, len(d.Images)),
		IsOwner:         d.IsOwner,
		UnreadInquiries: d.UnreadInquiries,
		CanInquire:      d.CanInquire,
		LoginRequired:   d.LoginRequired,
	}
	for i := range d.Images {
		out.Images = append(out.Images, toImageDTO(&d.Images[i]))
	}
	if d.Prefill != nil {
		out.InquiryPrefill = &prefillDTO{Name: d.Prefill.Name, Email: d.Prefill.Email, Phone: d.Prefill.Phone}
	}
	return out
}

type inquiryDTO struct {
	ID              string    `json:"id"`
	PropertyID      string    `json:"property_id"`
	PropertyTitle   string    `json:"property_title,omitempty"`
	PropertyOwnerID string    `json:"property_owner_id,omitempty"`
	SenderID        string    `json:"sender_id"`
	SenderUsername  string    `json:"sender_username,omitempty"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Message         string    `json:"message"`
	IsRead          bool      `json:"is_read"`
	CreatedAt       time.Time `json:"created_at"`
}

func fromInquiry(i *entity.Inquiry) inquiryDTO {
	return inquiryDTO{
		ID:         i.ID,
		PropertyID: i.PropertyID,
		SenderID:   i.UserID,
		Name:       i.Name,
		Email:      i.Email,
		Phone:      i.Phone,
		Message:    i.Message,
		IsRead:     i.IsRead,
		CreatedAt:  i.CreatedAt,
	}
}

func toInquiryDTO(v *entity.InquiryView) inquiryDTO {
	out := fromInquiry(&v.Inquiry)
	out.PropertyTitle = v.PropertyTitle
	out.PropertyOwnerID = v.PropertyOwnerID
	out.SenderUsername = v.SenderUsername
	return out
}

func toInquiryDTOs(vs []entity.InquiryView) []inquiryDTO {
	out := make([]inquiryDTO, 0, len(vs))
	for i := range vs {
		out = append(out, toInquiryDTO(&vs[i]))
	}
	return out
}
