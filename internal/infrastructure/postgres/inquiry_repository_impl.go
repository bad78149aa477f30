package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	"github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

// inquiryViewSelect joins property and sender so a mailbox page is one query.
const inquiryViewSelect = `
	SELECT i.id, i.property_id, i.user_id, i.name, i.email, i.phone, i.message, i.is_read, i.created_at,
	       p.title, p.owner_id, u.username
	FROM inquiries i
	JOIN properties p ON p.id = i.property_id
	JOIN users u ON u.id = i.user_id`

type InquiryRepository struct {
	pool *pgxpool.Pool
}

func NewInquiryRepository(pool *pgxpool.Pool) *InquiryRepository {
	return &InquiryRepository{pool: pool}
}

func scanInquiryView(row interface{ Scan(dest ...any) error }, v *entity.InquiryView) error {
	return row.Scan(&v.ID, &v.PropertyID, &v.UserID, &v.Name, &v.Email, &v.Phone, &v.Message,
		&v.IsRead, &v.CreatedAt, &v.PropertyTitle, &v.PropertyOwnerID, &v.SenderUsername)
}

func (r *InquiryRepository) Create(ctx context.Context, i *entity.Inquiry) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO inquiries (property_id, user_id, name, email, phone, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_read, created_at
	`, i.PropertyID, i.UserID, i.Name, i.Email, i.Phone, i.Message)
	return mapErr(row.Scan(&i.ID, &i.IsRead, &i.CreatedAt))
}

func (r *InquiryRepository) FindVisibleTo(ctx context.Context, viewerID, id string, lock bool) (*entity.InquiryView, error) {
	sql := inquiryViewSelect + ` WHERE i.id = $1 AND (p.owner_id = $2 OR i.user_id = $2)`
	if lock {
		sql += ` FOR UPDATE OF i`
	}
	v := &entity.InquiryView{}
	if err := scanInquiryView(conn(ctx, r.pool).QueryRow(ctx, sql, id, viewerID), v); err != nil {
		return nil, mapErr(err)
	}
	return v, nil
}

func (r *InquiryRepository) MarkRead(ctx context.Context, id string) (bool, error) {
	res, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE inquiries SET is_read = true WHERE id = $1 AND is_read = false`, id)
	if err != nil {
		return false, mapErr(err)
	}
	return res.RowsAffected() > 0, nil
}

func mailboxColumn(box repository.Mailbox) string {
	if box == repository.MailboxSent {
		return "i.user_id"
	}
	return "p.owner_id"
}

func (r *InquiryRepository) List(ctx context.Context, q repository.InquiryQuery) ([]entity.InquiryView, error) {
	where := mailboxColumn(q.Box) + ` = $1`
	if q.UnreadOnly {
		where += ` AND i.is_read = false`
	}
	sql := fmt.Sprintf(`%s WHERE %s ORDER BY i.created_at DESC, i.id LIMIT $2 OFFSET $3`, inquiryViewSelect, where)
	rows, err := conn(ctx, r.pool).Query(ctx, sql, q.UserID, q.Limit, q.Offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	out := make([]entity.InquiryView, 0, q.Limit)
	for rows.Next() {
		var v entity.InquiryView
		if err := scanInquiryView(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *InquiryRepository) Count(ctx context.Context, box repository.Mailbox, userID string) (int, error) {
	sql := `SELECT COUNT(*) FROM inquiries i JOIN properties p ON p.id = i.property_id WHERE ` +
		mailboxColumn(box) + ` = $1`
	var n int
	if err := conn(ctx, r.pool).QueryRow(ctx, sql, userID).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *InquiryRepository) CountUnreadForProperty(ctx context.Context, propertyID string) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM inquiries WHERE property_id = $1 AND is_read = false`, propertyID).Scan(&n)
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

var _ repository.InquiryRepository = (*InquiryRepository)(nil)
