package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onlinestore/onlinestore/internal/platform/db"
)

const pgUniqueViolation = "23505"

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// PGRepository implements CredentialStore using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches a user and its current roles.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	roles, err := userRoles(ctx, r.pool, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

// ExistsByUsername reports whether a user with username exists.
func (r *PGRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("auth: user exists: %w", err)
	}
	return exists, nil
}

// Save inserts the user and its role links in one transaction. The unique
// index on users.username settles concurrent signups for the same name.
func (r *PGRepository) Save(ctx context.Context, user *User) (*User, error) {
	saved := *user
	saved.Roles = append([]Role(nil), user.Roles...)
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash, created_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			user.Username, user.Email, user.PasswordHash, user.CreatedAt,
		).Scan(&saved.ID, &saved.CreatedAt)
		if err != nil {
			return err
		}
		for _, role := range saved.Roles {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				saved.ID, role.ID,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("auth: save user: %w", err)
	}
	return &saved, nil
}

// FindRoleByName fetches a role row.
func (r *PGRepository) FindRoleByName(ctx context.Context, name RoleName) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, string(name)).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotConfigured
		}
		return nil, fmt.Errorf("auth: find role: %w", err)
	}
	return &role, nil
}

func userRoles(ctx context.Context, q dbtx, userID int64) ([]Role, error) {
	rows, err := q.Query(ctx,
		`SELECT r.id, r.name
		   FROM roles r
		   JOIN user_roles ur ON ur.role_id = r.id
		  WHERE ur.user_id = $1
		  ORDER BY r.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("auth: user roles: %w", err)
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("auth: scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: user roles: %w", err)
	}
	return roles, nil
}

var _ CredentialStore = (*PGRepository)(nil)
