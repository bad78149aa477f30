package postgres

import (
	"strconv"
	"strings"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	"github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

// listingSQL accumulates WHERE conditions with positional pgx arguments.
type listingSQL struct {
	where []string
	args  []any
}

func (b *listingSQL) add(cond string, arg any) {
	b.args = append(b.args, arg)
	b.where = append(b.where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(b.args))))
}

func buildListingWhere(f repository.ListingFilter) *listingSQL {
	b := &listingSQL{}
	b.add("status = ?", string(entity.StatusAvailable))
	if f.Search != "" {
		b.add("(city ILIKE ? OR state ILIKE ?)", "%"+escapeLike(f.Search)+"%")
	}
	if f.PropertyType != "" {
		b.add("property_type = ?", f.PropertyType)
	}
	if f.MinPrice != nil {
		b.add("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		b.add("price <= ?", *f.MaxPrice)
	}
	if f.MinBedrooms != nil {
		b.add("bedrooms >= ?", *f.MinBedrooms)
	}
	if f.MinBathrooms != nil {
		b.add("bathrooms >= ?", *f.MinBathrooms)
	}
	return b
}

func (b *listingSQL) clause() string {
	return strings.Join(b.where, " AND ")
}

func listingOrder(k repository.SortKey) string {
	switch k {
	case repository.SortPriceAsc:
		return "price ASC, id"
	case repository.SortPriceDesc:
		return "price DESC, id"
	case repository.SortAreaAsc:
		return "area ASC, id"
	case repository.SortAreaDesc:
		return "area DESC, id"
	case repository.SortOldest:
		return "created_at ASC, id"
	default:
		return "created_at DESC, id"
	}
}

// BuildListingCount returns the COUNT statement for the filter.
func BuildListingCount(f repository.ListingFilter) (string, []any) {
	b := buildListingWhere(f)
	return `SELECT COUNT(*) FROM properties WHERE ` + b.clause(), b.args
}

// BuildListingSelect returns the page statement for the query.
func BuildListingSelect(q repository.ListingQuery) (string, []any) {
	b := buildListingWhere(q.Filter)
	args := append(b.args, q.Limit, q.Offset)
	n := len(b.args)
	sql := `SELECT ` + propertyColumns + ` FROM properties WHERE ` + b.clause() +
		` ORDER BY ` + listingOrder(q.Sort) +
		` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	return sql, args
}

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
