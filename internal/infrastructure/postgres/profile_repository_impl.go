package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	"github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*entity.Profile, error) {
	p := &entity.Profile{}
	var role string
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT user_id, role, phone, bio, created_at, updated_at
		FROM user_profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &role, &p.Phone, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	p.Role = entity.Role(role)
	return p, nil
}

func (r *ProfileRepository) EnsureExists(ctx context.Context, userID string) (*entity.Profile, bool, error) {
	res, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO user_profiles (user_id, role)
		SELECT id, $2 FROM users WHERE id = $1
		ON CONFLICT (user_id) DO NOTHING
	`, userID, string(entity.RoleBuyer))
	if err != nil {
		return nil, false, mapErr(err)
	}
	p, err := r.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return p, res.RowsAffected() > 0, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	p.UpdatedAt = time.Now()
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE user_profiles SET phone = $1, bio = $2, updated_at = $3 WHERE user_id = $4
	`, p.Phone, p.Bio, p.UpdatedAt, p.UserID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) SetRole(ctx context.Context, userID string, role entity.Role) error {
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE user_profiles SET role = $1, updated_at = now() WHERE user_id = $2
	`, string(role), userID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) UsersWithoutProfile(ctx context.Context) ([]string, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT u.id FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE p.user_id IS NULL
		ORDER BY u.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)
