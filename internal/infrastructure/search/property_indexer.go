package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
)

// PropertyIndexer mirrors AVAILABLE listings into an Elasticsearch index
// for external consumers. The catalog query never reads from it.
type PropertyIndexer struct {
	es     *elasticsearch.Client
	index  string
	logger *logrus.Logger
}

func NewPropertyIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *PropertyIndexer {
	return &PropertyIndexer{es: es, index: index, logger: logger}
}

type propertyDoc struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          string    `json:"price"`
	FormattedPrice string    `json:"formatted_price"`
	City           string    `json:"city"`
	State          string    `json:"state"`
	Zipcode        string    `json:"zipcode"`
	Bedrooms       int       `json:"bedrooms"`
	Bathrooms      string    `json:"bathrooms"`
	Area           int       `json:"area"`
	PropertyType   string    `json:"property_type"`
	Status         string    `json:"status"`
	FeaturedImage  string    `json:"featured_image,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toDoc(p *entity.Property) propertyDoc {
	return propertyDoc{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price.StringFixed(entity.PriceScale),
		FormattedPrice: p.FormattedPrice(),
		City:           p.City,
		State:          p.State,
		Zipcode:        p.Zipcode,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms.StringFixed(entity.BathroomScale),
		Area:           p.Area,
		PropertyType:   string(p.PropertyType),
		Status:         string(p.Status),
		FeaturedImage:  p.FeaturedImage,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// Index upserts the listing. Listings that are not available are removed
// instead.
func (x *PropertyIndexer) Index(ctx context.Context, p *entity.Property) error {
	if x.es == nil || x.index == "" {
		return nil
	}
	if !p.IsAvailable() {
		return x.Remove(ctx, p.ID)
	}
	b, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: p.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", p.ID, res.Status())
	}
	return nil
}

// Remove deletes the document; a missing document is not an error.
func (x *PropertyIndexer) Remove(ctx context.Context, id string) error {
	if x.es == nil || x.index == "" {
		return nil
	}
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// EnsureIndex creates the index with explicit mappings when it is missing.
func (x *PropertyIndexer) EnsureIndex(ctx context.Context) error {
	if x.es == nil || x.index == "" {
		return nil
	}
	res, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(ctx, x.es)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	mapping := `{"mappings":{"properties":{
		"title":{"type":"text"},"description":{"type":"text"},
		"city":{"type":"keyword"},"state":{"type":"keyword"},"zipcode":{"type":"keyword"},
		"price":{"type":"scaled_float","scaling_factor":100},
		"bathrooms":{"type":"scaled_float","scaling_factor":10},
		"bedrooms":{"type":"integer"},"area":{"type":"integer"},
		"property_type":{"type":"keyword"},"status":{"type":"keyword"},
		"owner_id":{"type":"keyword"},"created_at":{"type":"date"},"updated_at":{"type":"date"}}}}`
	res, err = esapi.IndicesCreateRequest{Index: x.index, Body: bytes.NewReader([]byte(mapping))}.Do(ctx, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es create index %s: %s", x.index, res.Status())
	}
	if x.logger != nil {
		x.logger.WithField("index", x.index).Info("search index created")
	}
	return nil
}
