package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"transcendence/models"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailConflict       = errors.New("user email conflict")
	ErrUserUsernameConflict    = errors.New("username conflict")
	ErrUserDisplayNameConflict = errors.New("display name conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]models.User, error)
	TouchLastSeen(ctx context.Context, id int) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, username, display_name, email, password_hash, avatar_key, totp_secret, twofa_enabled, last_seen, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, display_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, last_seen, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
	).Scan(&user.ID, &user.LastSeen, &user.CreatedAt)

	if err != nil {
		return mapUserConstraint(err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return r.scanUser(ctx, query, username)
}

// GetByUsernameOrEmail resolves a login identifier the way the login form
// accepts it: either field matches.
func (r *postgresUserRepository) GetByUsernameOrEmail(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1) OR lower(email) = lower($1)`
	return r.scanUser(ctx, query, login)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			username = $1,
			display_name = $2,
			email = $3,
			password_hash = $4,
			avatar_key = $5,
			totp_secret = $6,
			twofa_enabled = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
		user.AvatarKey,
		user.TOTPSecret,
		user.TwoFAEnabled,
		user.ID,
	)
	if err != nil {
		return mapUserConstraint(err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := scanUserRow(rows.Scan, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// TouchLastSeen stamps activity; called on every authenticated request and on
// websocket traffic.
func (r *postgresUserRepository) TouchLastSeen(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_seen = now() WHERE id = $1`, id)
	return err
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := scanUserRow(r.db.QueryRowContext(ctx, query, args...).Scan, user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func scanUserRow(scan func(...interface{}) error, user *models.User) error {
	return scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarKey,
		&user.TOTPSecret,
		&user.TwoFAEnabled,
		&user.LastSeen,
		&user.CreatedAt,
	)
}

func mapUserConstraint(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_username_key":
			return ErrUserUsernameConflict
		case "users_email_key":
			return ErrUserEmailConflict
		case "users_display_name_key":
			return ErrUserDisplayNameConflict
		}
	}
	return err
}
