package application

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	repo "github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

// ListingService answers the public catalog query.
type ListingService struct {
	d   Deps
	log *logrus.Logger
}

func NewListingService(d Deps) *ListingService {
	return &ListingService{d: d, log: d.logger()}
}

// ListingRequest is the raw query string. Values that do not parse are
// ignored rather than rejected.
type ListingRequest struct {
	Search       string `form:"search"`
	PropertyType string `form:"property_type"`
	MinPrice     string `form:"min_price"`
	MaxPrice     string `form:"max_price"`
	Bedrooms     string `form:"bedrooms"`
	Bathrooms    string `form:"bathrooms"`
	Sort         string `form:"sort"`
	Page         string `form:"page"`
}

// PropertySummary is one row of the catalog.
type PropertySummary struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Price          decimal.Decimal     `json:"price"`
	FormattedPrice string              `json:"formatted_price"`
	City           string              `json:"city"`
	State          string              `json:"state"`
	Bedrooms       int                 `json:"bedrooms"`
	Bathrooms      decimal.Decimal     `json:"bathrooms"`
	Area           int                 `json:"area"`
	PropertyType   entity.PropertyType `json:"property_type"`
	FeaturedImage  string              `json:"featured_image,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

func summarize(p entity.Property) PropertySummary {
	return PropertySummary{
		ID:             p.ID,
		Title:          p.Title,
		Price:          p.Price,
		FormattedPrice: p.FormattedPrice(),
		City:           p.City,
		State:          p.State,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		Area:           p.Area,
		PropertyType:   p.PropertyType,
		FeaturedImage:  p.FeaturedImage,
		CreatedAt:      p.CreatedAt,
	}
}

// ListingPage is one page of available properties plus the applied
// filters, echoed so clients can rebuild pagination links.
type ListingPage struct {
	Items      []PropertySummary `json:"items"`
	Pagination Page              `json:"pagination"`
	HasFilters bool              `json:"has_filters"`
	Filters    map[string]string `json:"filters"`
	Sort       string            `json:"sort"`
}

// ParseListingFilter converts the request into a filter and the echo of
// what was applied.
func ParseListingFilter(r ListingRequest) (repo.ListingFilter, map[string]string) {
	var f repo.ListingFilter
	applied := map[string]string{}

	if s := strings.TrimSpace(r.Search); s != "" {
		f.Search = s
		applied["search"] = s
	}
	if t := strings.TrimSpace(r.PropertyType); t != "" {
		f.PropertyType = t
		applied["property_type"] = t
	}
	if d, ok := parseDecimal(r.MinPrice); ok {
		f.MinPrice = &d
		applied["min_price"] = d.String()
	}
	if d, ok := parseDecimal(r.MaxPrice); ok {
		f.MaxPrice = &d
		applied["max_price"] = d.String()
	}
	if n, err := strconv.Atoi(strings.TrimSpace(r.Bedrooms)); err == nil {
		f.MinBedrooms = &n
		applied["bedrooms"] = strconv.Itoa(n)
	}
	if d, ok := parseDecimal(r.Bathrooms); ok {
		f.MinBathrooms = &d
		applied["bathrooms"] = d.String()
	}
	return f, applied
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !entity.Bounded(d) {
		return decimal.Decimal{}, false
	}
	return d, true
}

// List returns the requested page of AVAILABLE properties. Out of range
// pages clamp to the nearest valid page.
func (s *ListingService) List(ctx context.Context, r ListingRequest) (*ListingPage, error) {
	filter, applied := ParseListingFilter(r)
	sort := repo.ParseSort(strings.TrimSpace(r.Sort))
	requested := parsePage(r.Page)

	key := listingCacheKey(applied, sort, requested)
	if b, ok := s.d.cache().Get(ctx, key); ok {
		var page ListingPage
		if err := json.Unmarshal(b, &page); err == nil {
			listingCacheHits.Add(1)
			return &page, nil
		}
	}
	listingCacheMisses.Add(1)

	total, err := s.d.Properties.CountAvailable(ctx, filter)
	if err != nil {
		return nil, err
	}
	pg := paginate(total, repo.ListingPageSize, requested)
	rows, err := s.d.Properties.SearchAvailable(ctx, repo.ListingQuery{
		Filter: filter,
		Sort:   sort,
		Limit:  pg.Size,
		Offset: pg.Offset(),
	})
	if err != nil {
		return nil, err
	}

	out := &ListingPage{
		Items:      make([]PropertySummary, 0, len(rows)),
		Pagination: pg,
		HasFilters: filter.Active(),
		Filters:    applied,
		Sort:       string(sort),
	}
	for _, p := range rows {
		out.Items = append(out.Items, summarize(p))
	}

	if b, err := json.Marshal(out); err == nil {
		s.d.cache().Set(ctx, key, b, s.d.CacheTTL)
	} else {
		s.log.WithError(err).Warn("encode listing page failed")
	}
	return out, nil
}

func listingCacheKey(applied map[string]string, sort repo.SortKey, page int) string {
	v := url.Values{}
	for k, val := range applied {
		v.Set(k, val)
	}
	v.Set("sort", string(sort))
	v.Set("page", strconv.Itoa(page))
	return "listings?" + v.Encode()
}
