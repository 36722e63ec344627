package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	dom "example.com/user-admin/internal/domain/user"
)

const errDuplicateEntry = 1062

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id    BIGINT AUTO_INCREMENT PRIMARY KEY,
    name  VARCHAR(255) NOT NULL,
    email VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
    role  VARCHAR(16)  NOT NULL,
    UNIQUE KEY uq_users_email (email)
)`

// Open connects to MySQL and makes sure the users table exists.
// Found rows are reported on UPDATE so a no-op update is not mistaken for a missing row.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ClientFoundRows = true
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql schema: %w", err)
	}
	return db, nil
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, c dom.Candidate) (*dom.User, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, role) VALUES (?, ?, ?)`,
		c.Name, c.Email, string(c.Role),
	)
	if err != nil {
		if isDuplicate(err) {
			return nil, dom.ErrEmailAlreadyUsed
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &dom.User{ID: id, Name: c.Name, Email: c.Email, Role: c.Role}, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*dom.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, role FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*dom.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, role FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *dom.User) (*dom.User, error) {
	res, err := r.db.ExecContext(ctx, `
        UPDATE users
        SET name = ?, email = ?, role = ?
        WHERE id = ?
    `, u.Name, u.Email, string(u.Role), u.ID)
	if err != nil {
		if isDuplicate(err) {
			return nil, dom.ErrEmailAlreadyUsed
		}
		return nil, err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return nil, dom.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
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
		where = append(where, `role = ?`)
		args = append(args, string(*filter.Role))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where = append(where, `(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(role) LIKE ?)`)
		args = append(args, like, like, like)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*dom.User{}
	for rows.Next() {
		var (
			u    dom.User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role); err != nil {
			return nil, err
		}
		u.Role = dom.Role(role)
		users = append(users, &u)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*dom.User, error) {
	var (
		u    dom.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dom.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = dom.Role(role)
	return &u, nil
}

func isDuplicate(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errDuplicateEntry
}
