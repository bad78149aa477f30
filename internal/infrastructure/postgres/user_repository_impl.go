package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
	"github.com/oksasatya/go-realestate-listings/internal/domain/repository"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
	tx   *TxManager
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool, tx: NewTxManager(pool)}
}

func scanUser(row interface{ Scan(dest ...any) error }, u *entity.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName,
		&u.CreatedAt, &u.UpdatedAt)
}

// Create inserts the user and its profile in one transaction.
func (r *UserRepository) Create(ctx context.Context, acc *entity.Account) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		u := &acc.User
		err := q.QueryRow(ctx, `
			INSERT INTO users (username, email, password_hash, first_name, last_name)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`, u.Username, u.Email, u.Password, u.FirstName, u.LastName).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return mapErr(err)
		}

		p := &acc.Profile
		p.UserID = u.ID
		err = q.QueryRow(ctx, `
			INSERT INTO user_profiles (user_id, role, phone, bio)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at
		`, p.UserID, string(p.Role), p.Phone, p.Bio).Scan(&p.CreatedAt, &p.UpdatedAt)
		return mapErr(err)
	})
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if err := scanUser(row, u); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `username = $1`, username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `lower(email) = lower($1) ORDER BY created_at LIMIT 1`, email)
}

func (r *UserRepository) GetAccount(ctx context.Context, id string) (*entity.Account, error) {
	acc := &entity.Account{}
	u, p := &acc.User, &acc.Profile
	var role string
	err := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.created_at, u.updated_at,
		       p.user_id, p.role, p.phone, p.bio, p.created_at, p.updated_at
		FROM users u
		JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt,
		&p.UserID, &role, &p.Phone, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	p.Role = entity.Role(role)
	return acc, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $5
	`, u.Email, u.FirstName, u.LastName, u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, hash, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the user; foreign keys cascade to profile, properties,
// images and inquiries.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
