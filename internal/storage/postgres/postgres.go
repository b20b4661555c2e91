package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/models"
	"jobportal/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation = "23505"

	constraintEmail = "users_email_key"
	constraintPhone = "users_phone_number_key"
)

// DB is the part of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type PostgresRepo struct {
	db   DB
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.Postgres) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{db: pool, pool: pool}, nil
}

// NewWithDB wraps an existing connection (a pool, a mock, a tx-backed adapter).
func NewWithDB(db DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const userColumns = `
	id::text, full_name, email, phone_number, password_hash, role,
	COALESCE(avatar_url, ''), COALESCE(cover_image_url, ''),
	COALESCE(refresh_token, ''), created_at`

// SaveUser inserts the user together with its first refresh token.
func (r *PostgresRepo) SaveUser(ctx context.Context, user models.User) error {
	const op = "storage.postgres.SaveUser"

	const query = `
		INSERT INTO users (id, full_name, email, phone_number, password_hash, role, avatar_url, cover_image_url, refresh_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.Email,
		user.PhoneNumber,
		string(user.PassHash),
		string(user.Role),
		user.AvatarURL,
		user.CoverImageURL,
		user.RefreshToken,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			switch pgErr.ConstraintName {
			case constraintEmail:
				return storage.ErrEmailTaken
			case constraintPhone:
				return storage.ErrPhoneTaken
			default:
				return storage.ErrUserExists
			}
		}

		return fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return nil
}

// UserByIdentifier finds a user whose email or phone number equals
// identifier and whose role matches.
func (r *PostgresRepo) UserByIdentifier(ctx context.Context, identifier string, role models.Role) (models.User, error) {
	const op = "storage.postgres.UserByIdentifier"

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE (email = $1 OR phone_number = $1) AND role = $2
		LIMIT 1;
	`

	return r.queryUser(ctx, op, query, identifier, string(role))
}

func (r *PostgresRepo) UserByID(ctx context.Context, id string) (models.User, error) {
	const op = "storage.postgres.UserByID"

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1;
	`

	return r.queryUser(ctx, op, query, id)
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.UserByEmail"

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1;
	`

	return r.queryUser(ctx, op, query, email)
}

// UserByResetToken is a read-only lookup of a pending, unexpired reset.
func (r *PostgresRepo) UserByResetToken(ctx context.Context, token string, now time.Time) (models.User, error) {
	const op = "storage.postgres.UserByResetToken"

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE reset_password_token = $1 AND reset_password_expiry > $2;
	`

	u, err := r.queryUser(ctx, op, query, token, now)
	if errors.Is(err, storage.ErrUserNotFound) {
		return models.User{}, storage.ErrResetTokenNotFound
	}

	return u, err
}

func (r *PostgresRepo) SetRefreshToken(ctx context.Context, userID, token string) error {
	const op = "storage.postgres.SetRefreshToken"

	const query = `UPDATE users SET refresh_token = $1, updated_at = NOW() WHERE id = $2`

	return r.execOne(ctx, op, storage.ErrUserNotFound, query, token, userID)
}

// RotateRefreshToken replaces oldToken with newToken only if oldToken is
// still the stored value.
func (r *PostgresRepo) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	const op = "storage.postgres.RotateRefreshToken"

	const query = `
		UPDATE users
		SET refresh_token = $1, updated_at = NOW()
		WHERE id = $2 AND refresh_token = $3
	`

	return r.execOne(ctx, op, storage.ErrRefreshTokenStale, query, newToken, userID, oldToken)
}

func (r *PostgresRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	const op = "storage.postgres.ClearRefreshToken"

	const query = `UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	const op = "storage.postgres.UpdateLastLogin"

	const query = `UPDATE users SET last_login_at = $1 WHERE id = $2`

	if _, err := r.db.Exec(ctx, query, at, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, userID string, passHash []byte) error {
	const op = "storage.postgres.UpdatePassword"

	const query = `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`

	return r.execOne(ctx, op, storage.ErrUserNotFound, query, string(passHash), userID)
}

func (r *PostgresRepo) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	const op = "storage.postgres.SetResetToken"

	const query = `
		UPDATE users
		SET reset_password_token = $1, reset_password_expiry = $2, updated_at = NOW()
		WHERE id = $3
	`

	return r.execOne(ctx, op, storage.ErrUserNotFound, query, token, expiry, userID)
}

// ClearResetToken drops a pending reset only if token is still the one
// stored, so a newer request is never wiped by an older one.
func (r *PostgresRepo) ClearResetToken(ctx context.Context, userID, token string) error {
	const op = "storage.postgres.ClearResetToken"

	const query = `
		UPDATE users
		SET reset_password_token = NULL, reset_password_expiry = NULL, updated_at = NOW()
		WHERE id = $1 AND reset_password_token = $2
	`

	if _, err := r.db.Exec(ctx, query, userID, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ConsumeResetToken sets the new password hash and clears the reset fields
// in one statement. It returns the id of the affected user.
func (r *PostgresRepo) ConsumeResetToken(ctx context.Context, token string, passHash []byte, now time.Time) (string, error) {
	const op = "storage.postgres.ConsumeResetToken"

	const query = `
		UPDATE users
		SET password_hash = $1,
		    reset_password_token = NULL,
		    reset_password_expiry = NULL,
		    updated_at = NOW()
		WHERE reset_password_token = $2 AND reset_password_expiry > $3
		RETURNING id::text
	`

	var id string

	err := r.db.QueryRow(ctx, query, string(passHash), token, now).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrResetTokenNotFound
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) Close() {
	r.db.Close()
}

func (r *PostgresRepo) queryUser(ctx context.Context, op, query string, args ...any) (models.User, error) {
	var (
		u    models.User
		role string
	)

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.FullName,
		&u.Email,
		&u.PhoneNumber,
		&u.PassHash,
		&role,
		&u.AvatarURL,
		&u.CoverImageURL,
		&u.RefreshToken,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u.Role = models.Role(role)

	return u, nil
}

// execOne runs an update that must touch exactly one row; zero rows
// yields notFound.
func (r *PostgresRepo) execOne(ctx context.Context, op string, notFound error, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return notFound
	}

	return nil
}

// dsn builds the libpq-style connection string.
func dsn(cfg config.Postgres) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}
