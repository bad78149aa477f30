package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	"github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

const propertyColumns = `id, owner_id, title, description, price, address, city, state, zipcode,
	bedrooms, bathrooms, area, property_type, status, featured_image, created_at, updated_at`

type PropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPropertyRepository(pool *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{pool: pool}
}

func scanProperty(row interface{ Scan(dest ...any) error }, p *entity.Property) error {
	var typ, status string
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Price, &p.Address, &p.City,
		&p.State, &p.Zipcode, &p.Bedrooms, &p.Bathrooms, &p.Area, &typ, &status, &p.FeaturedImage,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	p.PropertyType = entity.PropertyType(typ)
	p.Status = entity.ListingStatus(status)
	return nil
}

func collectProperties(rows pgx.Rows) ([]entity.Property, error) {
	defer rows.Close()
	out := make([]entity.Property, 0)
	for rows.Next() {
		var p entity.Property
		if err := scanProperty(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PropertyRepository) Create(ctx context.Context, p *entity.Property) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO properties (owner_id, title, description, price, address, city, state, zipcode,
			bedrooms, bathrooms, area, property_type, status, featured_image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, p.OwnerID, p.Title, p.Description, p.Price, p.Address, p.City, p.State, p.Zipcode,
		p.Bedrooms, p.Bathrooms, p.Area, string(p.PropertyType), string(p.Status), p.FeaturedImage)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*entity.Property, error) {
	p := &entity.Property{}
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	if err := scanProperty(row, p); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *PropertyRepository) FindOwnedBy(ctx context.Context, ownerID, id string) (*entity.Property, error) {
	p := &entity.Property{}
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err := scanProperty(row, p); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *entity.Property) error {
	p.UpdatedAt = time.Now()
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE properties
		SET title = $1, description = $2, price = $3, address = $4, city = $5, state = $6, zipcode = $7,
			bedrooms = $8, bathrooms = $9, area = $10, property_type = $11, status = $12, updated_at = $13
		WHERE id = $14
	`, p.Title, p.Description, p.Price, p.Address, p.City, p.State, p.Zipcode,
		p.Bedrooms, p.Bathrooms, p.Area, string(p.PropertyType), string(p.Status), p.UpdatedAt, p.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the property; images and inquiries cascade.
func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Property, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+propertyColumns+` FROM properties
		WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectProperties(rows)
}

func (r *PropertyRepository) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT id FROM properties WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, mapErr(err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PropertyRepository) Images(ctx context.Context, propertyID string) ([]entity.PropertyImage, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, property_id, image, caption, uploaded_at
		FROM property_images WHERE property_id = $1
		ORDER BY uploaded_at, id
	`, propertyID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := make([]entity.PropertyImage, 0)
	for rows.Next() {
		var img entity.PropertyImage
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.Image, &img.Caption, &img.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *PropertyRepository) AddImage(ctx context.Context, img *entity.PropertyImage) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO property_images (property_id, image, caption)
		VALUES ($1, $2, $3)
		RETURNING id, uploaded_at
	`, img.PropertyID, img.Image, img.Caption)
	return mapErr(row.Scan(&img.ID, &img.UploadedAt))
}

func (r *PropertyRepository) DeleteImage(ctx context.Context, propertyID, imageID string) error {
	res, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM property_images WHERE id = $1 AND property_id = $2`, imageID, propertyID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) SetFeaturedImage(ctx context.Context, id, ref string) error {
	res, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE properties SET featured_image = $1, updated_at = now() WHERE id = $2`, ref, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PropertyRepository) SearchAvailable(ctx context.Context, q repository.ListingQuery) ([]entity.Property, error) {
	sql, args := BuildListingSelect(q)
	rows, err := conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectProperties(rows)
}

func (r *PropertyRepository) CountAvailable(ctx context.Context, f repository.ListingFilter) (int, error) {
	sql, args := BuildListingCount(f)
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

var _ repository.PropertyRepository = (*PropertyRepository)(nil)
