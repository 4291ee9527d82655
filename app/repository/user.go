package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/posturease/ms-go-account/app/entity"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const userColumns = `id, username, email, password_hash, first_name, last_name, birth_date, gender,
		       email_verified, verification_token, token_expires, password_change_token, password_token_expires,
		       created_at, updated_at`

type UserRepository struct {
	db   *sql.DB
	q    querier
	caps Capabilities
}

func NewUserRepository(db *sql.DB, caps Capabilities) *UserRepository {
	return &UserRepository{db: db, q: db, caps: caps}
}

// WithTx returns a copy of the repository that runs its statements on tx.
func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{db: r.db, q: tx, caps: r.caps}
}

func (r *UserRepository) Capabilities() Capabilities {
	return r.caps
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, first_name, last_name, birth_date, gender,
		                   email_verified, verification_token, token_expires, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return withRetry(ctx, func(ctx context.Context) error {
		result, err := r.q.ExecContext(ctx, query,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.BirthDate,
			user.Gender,
			user.EmailVerified,
			user.VerificationToken,
			user.TokenExpires,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		user.ID = uint64(id)
		return nil
	})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE username = ?
	`
	return r.findOne(ctx, query, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE email = ?
	`
	return r.findOne(ctx, query, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

func (r *UserRepository) FindByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE verification_token = ?
	`
	return r.findOne(ctx, query, token)
}

func (r *UserRepository) FindByPasswordChangeToken(ctx context.Context, token string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE password_change_token = ?
	`
	return r.findOne(ctx, query, token)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user *entity.User
	err := withRetry(ctx, func(ctx context.Context) error {
		u := &entity.User{}
		err := r.q.QueryRowContext(ctx, query, arg).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.FirstName,
			&u.LastName,
			&u.BirthDate,
			&u.Gender,
			&u.EmailVerified,
			&u.VerificationToken,
			&u.TokenExpires,
			&u.PasswordChangeToken,
			&u.PasswordTokenExpires,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		if err == sql.ErrNoRows {
			user = nil
			return nil
		}
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindConflict checks both uniqueness constraints in one query. When both
// collide the username collision wins.
func (r *UserRepository) FindConflict(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	query := `SELECT username, email FROM users WHERE username = ? OR email = ? LIMIT 1`
	err = withRetry(ctx, func(ctx context.Context) error {
		var existingUsername, existingEmail string
		scanErr := r.q.QueryRowContext(ctx, query, username, email).Scan(&existingUsername, &existingEmail)
		if scanErr == sql.ErrNoRows {
			return nil
		}
		if scanErr != nil {
			return scanErr
		}
		if existingUsername == username {
			usernameTaken = true
		} else {
			emailTaken = true
		}
		return nil
	})
	return usernameTaken, emailTaken, err
}

// ConflictExcluding reports whether another row already holds username or
// email, ignoring the row being updated.
func (r *UserRepository) ConflictExcluding(ctx context.Context, username, email string, excludeID uint64) (bool, error) {
	query := `SELECT id FROM users WHERE (username = ? OR email = ?) AND id != ? LIMIT 1`
	var taken bool
	err := withRetry(ctx, func(ctx context.Context) error {
		var id uint64
		scanErr := r.q.QueryRowContext(ctx, query, username, email, excludeID).Scan(&id)
		if scanErr == sql.ErrNoRows {
			return nil
		}
		if scanErr != nil {
			return scanErr
		}
		taken = true
		return nil
	})
	return taken, err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET username = ?, email = ?, first_name = ?, last_name = ?, birth_date = ?, gender = ?, updated_at = ?
		WHERE id = ?
	`
	user.UpdatedAt = time.Now()
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, query,
			user.Username,
			user.Email,
			user.FirstName,
			user.LastName,
			user.BirthDate,
			user.Gender,
			user.UpdatedAt,
			user.ID,
		)
		return err
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID uint64, passwordHash string) error {
	query := `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, query, passwordHash, time.Now(), userID)
		return err
	})
}

// SaveVerificationToken overwrites any previously issued email-verification
// token, invalidating it.
func (r *UserRepository) SaveVerificationToken(ctx context.Context, userID uint64, token string, expires time.Time) error {
	query := `UPDATE users SET verification_token = ?, token_expires = ? WHERE id = ?`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, query, token, expires, userID)
		return err
	})
}

func (r *UserRepository) SavePasswordChangeToken(ctx context.Context, userID uint64, token string, expires time.Time) error {
	query := `UPDATE users SET password_change_token = ?, password_token_expires = ? WHERE id = ?`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, query, token, expires, userID)
		return err
	})
}

// MarkEmailVerified flips the verified flag and clears the token pair in a
// single statement so a consumed token can never be replayed.
func (r *UserRepository) MarkEmailVerified(ctx context.Context, userID uint64) error {
	query := `UPDATE users SET email_verified = TRUE, verification_token = NULL, token_expires = NULL WHERE id = ?`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, query, userID)
		return err
	})
}

func (r *UserRepository) ClearPasswordChangeToken(ctx context.Context, userID uint64) error {
	query := `UPDATE users SET password_change_token = NULL, password_token_expires = NULL WHERE id = ?`
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, query, userID)
		return err
	})
}

// List returns all non-admin accounts, newest first. On schemas without a
// status column every entry is reported active.
func (r *UserRepository) List(ctx context.Context) ([]entity.UserSummary, error) {
	query := `
		SELECT id, username, email, first_name, last_name, birth_date, gender, email_verified, created_at, updated_at
		FROM users
		WHERE username != ?
		ORDER BY created_at DESC
	`
	if r.caps.UserStatus {
		query = `
		SELECT id, username, email, first_name, last_name, birth_date, gender, email_verified, created_at, updated_at, status
		FROM users
		WHERE username != ?
		ORDER BY created_at DESC
	`
	}

	var users []entity.UserSummary
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.q.QueryContext(ctx, query, entity.AdminUsername)
		if err != nil {
			return err
		}
		defer rows.Close()

		users = users[:0]
		for rows.Next() {
			var u entity.UserSummary
			u.Active = true
			dest := []any{
				&u.ID,
				&u.Username,
				&u.Email,
				&u.FirstName,
				&u.LastName,
				&u.BirthDate,
				&u.Gender,
				&u.EmailVerified,
				&u.CreatedAt,
				&u.UpdatedAt,
			}
			if r.caps.UserStatus {
				dest = append(dest, &u.Active)
			}
			if err := rows.Scan(dest...); err != nil {
				return err
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SetStatus writes the status flag, or only touches updated_at on schemas
// that predate the column.
func (r *UserRepository) SetStatus(ctx context.Context, userID uint64, active bool) error {
	query := `UPDATE users SET updated_at = ? WHERE id = ?`
	args := []any{time.Now(), userID}
	if r.caps.UserStatus {
		query = `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`
		args = []any{active, time.Now(), userID}
	}
	return withRetry(ctx, func(ctx context.Context) error {
		_, err := r.q.ExecContext(ctx, query, args...)
		return err
	})
}

// Delete removes the user together with all dependent rows as one
// transaction. The face-embeddings table is included only when the
// capability probe found it.
func (r *UserRepository) Delete(ctx context.Context, userID uint64) error {
	return withRetry(ctx, func(ctx context.Context) error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		dependents := []string{
			`DELETE FROM posture_records WHERE user_id = ?`,
			`DELETE FROM user_exercises WHERE user_id = ?`,
		}
		if r.caps.FaceEmbeddings {
			dependents = append(dependents, `DELETE FROM user_face_embeddings WHERE user_id = ?`)
		}

		for _, query := range dependents {
			if _, err := tx.ExecContext(ctx, query, userID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID); err != nil {
			return err
		}

		return tx.Commit()
	})
}
