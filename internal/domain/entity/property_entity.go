package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PropertyType string

const (
	PropertyHouse      PropertyType = "HOUSE"
	PropertyApartment  PropertyType = "APARTMENT"
	PropertyCondo      PropertyType = "CONDO"
	PropertyTownhouse  PropertyType = "TOWNHOUSE"
	PropertyLand       PropertyType = "LAND"
	PropertyCommercial PropertyType = "COMMERCIAL"
)

var PropertyTypes = []PropertyType{
	PropertyHouse, PropertyApartment, PropertyCondo,
	PropertyTownhouse, PropertyLand, PropertyCommercial,
}

func (t PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if v == t {
			return true
		}
	}
	return false
}

type ListingStatus string

const (
	StatusAvailable ListingStatus = "AVAILABLE"
	StatusSold      ListingStatus = "SOLD"
	StatusPending   ListingStatus = "PENDING"
	StatusRented    ListingStatus = "RENTED"
)

var ListingStatuses = []ListingStatus{StatusAvailable, StatusSold, StatusPending, StatusRented}

func (s ListingStatus) Valid() bool {
	for _, v := range ListingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Column precision for money and bathroom counts.
const (
	PriceDigits    = 12
	PriceScale     = 2
	BathroomDigits = 3
	BathroomScale  = 1
)

// Property is a listing owned by exactly one user.
type Property struct {
	ID            string
	OwnerID       string
	Title         string
	Description   string
	Price         decimal.Decimal
	Address       string
	City          string
	State         string
	Zipcode       string
	Bedrooms      int
	Bathrooms     decimal.Decimal
	Area          int
	PropertyType  PropertyType
	Status        ListingStatus
	FeaturedImage string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Property) IsAvailable() bool { return p.Status == StatusAvailable }

func (p *Property) OwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}

// FormattedPrice renders the price as "$1,234,567.89".
// Values that do not fit the price column are returned as the raw decimal string.
func (p *Property) FormattedPrice() string {
	return FormatPrice(p.Price)
}

// FormatPrice groups thousands on the exact decimal representation.
func FormatPrice(d decimal.Decimal) string {
	if !FitsPrecision(d, PriceDigits, PriceScale) {
		return d.String()
	}
	fixed := d.Abs().StringFixed(PriceScale)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// maxDecimalMagnitude bounds both the exponent and the coefficient length of
// decimals taken from clients. Rescaling or printing anything larger is
// expensive and never a valid price.
const maxDecimalMagnitude = 32

// Bounded reports whether d is small enough to compare, rescale or format.
func Bounded(d decimal.Decimal) bool {
	e := d.Exponent()
	return e >= -maxDecimalMagnitude && e <= maxDecimalMagnitude && d.NumDigits() <= maxDecimalMagnitude
}

// FitsPrecision reports whether d can be stored in NUMERIC(digits, scale)
// without rounding.
func FitsPrecision(d decimal.Decimal, digits, scale int32) bool {
	if !Bounded(d) {
		return false
	}
	if !d.Equal(d.Truncate(scale)) {
		return false
	}
	limit := decimal.New(1, digits-scale)
	return d.Abs().LessThan(limit)
}

// PropertyImage belongs to a property gallery, ordered by upload time.
type PropertyImage struct {
	ID         string
	PropertyID string
	Image      string
	Caption    string
	UploadedAt time.Time
}
