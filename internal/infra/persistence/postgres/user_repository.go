package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "example.com/user-admin/internal/domain/user"
)

const uniqueViolation = "23505"

// Open creates a pool, pings the server and applies pending migrations.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg migrate: %w", err)
	}
	return pool, nil
}

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, c dom.Candidate) (*dom.User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, role) VALUES ($1, $2, $3)
         RETURNING id, name, email, role`,
		c.Name, c.Email, string(c.Role))
	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, dom.ErrEmailAlreadyUsed
	}
	return u, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*dom.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT id, name, email, role FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*dom.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT id, name, email, role FROM users WHERE email = $1`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *dom.User) (*dom.User, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE users SET name = $1, email = $2, role = $3
        WHERE id = $4
        RETURNING id, name, email, role
    `, u.Name, u.Email, string(u.Role), u.ID)
	updated, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, dom.ErrEmailAlreadyUsed
	}
	return updated, err
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dom.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, filter dom.ListUsersFilter) ([]*dom.User, error) {
	query := `SELECT id, name, email, role FROM users`
	var (
		where []string
		args  []any
	)
	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		where = append(where, fmt.Sprintf(`role = $%d`, len(args)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(`(name ILIKE $%d OR email ILIKE $%d OR role ILIKE $%d)`, n, n, n))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*dom.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*dom.User, error) {
	var (
		u    dom.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, dom.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = dom.Role(role)
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
