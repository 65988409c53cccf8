package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-user-auth/internal/model"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, phone, nickname, password_hash, status,
	login_attempts, locked_until, last_login_at, last_login_ip, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	return r.findOne(ctx, "find user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	return r.findOne(ctx, "find user by username",
		`SELECT `+userColumns+` FROM users WHERE username = $1`, strings.TrimSpace(username))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, "find user by email",
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (model.User, error) {
	return r.findOne(ctx, "find user by phone",
		`SELECT `+userColumns+` FROM users WHERE phone = $1`, strings.TrimSpace(phone))
}

func (r *UserRepository) findOne(ctx context.Context, op string, query string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.Phone, &u.Nickname, &u.PasswordHash, &u.Status,
		&u.LoginAttempts, &u.LockedUntil, &u.LastLoginAt, &u.LastLoginIP, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ExistsByIdentity reports which of username, email or phone is already taken.
// Empty values are not checked.
func (r *UserRepository) ExistsByIdentity(ctx context.Context, username string, email string, phone string) (string, error) {
	var field string
	err := r.pool.QueryRow(ctx,
		`SELECT CASE
		            WHEN username = $1 THEN 'username'
		            WHEN lower(email) = lower($2) THEN 'email'
		            ELSE 'phone'
		        END
		 FROM users
		 WHERE username = $1
		    OR lower(email) = lower($2)
		    OR ($3 <> '' AND phone = $3)
		 LIMIT 1`,
		strings.TrimSpace(username), strings.TrimSpace(email), strings.TrimSpace(phone)).Scan(&field)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("check user identity: %w", err)
	}
	return field, nil
}

// Create inserts the user and its role assignments in one transaction and
// fills in the generated id and timestamps.
func (r *UserRepository) Create(ctx context.Context, u *model.User, roleCodes ...string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, phone, nickname, password_hash, status, login_attempts)
		 VALUES ($1, $2, $3, $4, $5, $6, 0)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.Phone, u.Nickname, u.PasswordHash, u.Status).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrUserAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	for _, code := range roleCodes {
		tag, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role_id)
			 SELECT $1, id FROM roles WHERE code = $2
			 ON CONFLICT DO NOTHING`, u.ID, code)
		if err != nil {
			return fmt.Errorf("assign role %s: %w", code, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("assign role %s: unknown role code", code)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

// RecordFailedLogin counts one failed attempt and opens the lockout window
// when the count reaches maxAttempts. The whole transition is one UPDATE so
// concurrent failures cannot overwrite each other. A lock that has already
// expired restarts the count at 1; a lock still open is left untouched.
func (r *UserRepository) RecordFailedLogin(ctx context.Context, userID int64, now time.Time, maxAttempts int, lockUntil time.Time) (int, *time.Time, error) {
	var (
		attempts    int
		lockedUntil *time.Time
	)
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET
		     login_attempts = CASE
		         WHEN locked_until IS NOT NULL AND locked_until <= $2 THEN 1
		         ELSE login_attempts + 1
		     END,
		     locked_until = CASE
		         WHEN locked_until IS NOT NULL AND locked_until > $2 THEN locked_until
		         WHEN (CASE
		                   WHEN locked_until IS NOT NULL AND locked_until <= $2 THEN 1
		                   ELSE login_attempts + 1
		               END) >= $3 THEN $4::timestamptz
		         ELSE NULL
		     END,
		     updated_at = $2
		 WHERE id = $1
		 RETURNING login_attempts, locked_until`,
		userID, now, maxAttempts, lockUntil).Scan(&attempts, &lockedUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, model.ErrUserNotFound
	}
	if err != nil {
		return 0, nil, fmt.Errorf("record failed login: %w", err)
	}
	return attempts, lockedUntil, nil
}

func (r *UserRepository) ResetFailedAttempts(ctx context.Context, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET login_attempts = 0, locked_until = NULL, updated_at = $2 WHERE id = $1`,
		userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// CompleteLogin clears the failure counter and any expired lock for an active
// user whose lock window is not open at now. It reports false when the row no
// longer qualifies, so a lock set by concurrent failures after the caller read
// the user still wins.
func (r *UserRepository) CompleteLogin(ctx context.Context, userID int64, now time.Time) (bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET login_attempts = 0, locked_until = NULL, updated_at = $2
		 WHERE id = $1
		   AND status = $3
		   AND (locked_until IS NULL OR locked_until <= $2)
		 RETURNING id`,
		userID, now, model.UserStatusActive).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("complete login: %w", err)
	}
	return true, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time, ip string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_login_at = $2, last_login_ip = $3 WHERE id = $1`,
		userID, at, ip)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, userID int64, status model.UserStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET status = $2, updated_at = $3 WHERE id = $1`,
		userID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
