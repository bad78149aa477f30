package repository

import "github.com/shopspring/decimal"

// ListingPageSize is the fixed page size of the public catalog.
const ListingPageSize = 10

// SortKey is the sort token accepted by the public catalog.
type SortKey string

const (
	SortNewest    SortKey = ""
	SortOldest    SortKey = "oldest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortAreaAsc   SortKey = "area_asc"
	SortAreaDesc  SortKey = "area_desc"
)

// ParseSort maps a token to a SortKey; unknown tokens sort newest first.
func ParseSort(s string) SortKey {
	switch k := SortKey(s); k {
	case SortOldest, SortPriceAsc, SortPriceDesc, SortAreaAsc, SortAreaDesc:
		return k
	}
	return SortNewest
}

// ListingFilter holds the optional AND-composed catalog filters.
// Nil pointers mean the filter is not applied.
type ListingFilter struct {
	Search       string
	PropertyType string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinBedrooms  *int
	MinBathrooms *decimal.Decimal
}

// Active reports whether any filter is applied.
func (f ListingFilter) Active() bool {
	return f.Search != "" || f.PropertyType != "" || f.MinPrice != nil ||
		f.MaxPrice != nil || f.MinBedrooms != nil || f.MinBathrooms != nil
}

// ListingQuery is a filtered, sorted window over available properties.
type ListingQuery struct {
	Filter ListingFilter
	Sort   SortKey
	Limit  int
	Offset int
}
