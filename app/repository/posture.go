package repository

import (
	"context"
	"database/sql"

	"github.com/posturease/ms-go-account/app/entity"
)

type PostureRepository struct {
	db *sql.DB
}

func NewPostureRepository(db *sql.DB) *PostureRepository {
	return &PostureRepository{db: db}
}

func (r *PostureRepository) Insert(ctx context.Context, record *entity.PostureRecord) error {
	query := `
		INSERT INTO posture_records (user_id, posture_type, confidence_score, session_duration, corrections_count, good_time, bad_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	return withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query,
			record.UserID,
			record.PostureType,
			record.ConfidenceScore,
			record.SessionDuration,
			record.CorrectionsCount,
			record.GoodTime,
			record.BadTime,
		)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		record.ID = uint64(id)
		return nil
	})
}

// History returns at most limit records for the user, most recent first.
func (r *PostureRepository) History(ctx context.Context, userID uint64, limit int) ([]entity.PostureRecord, error) {
	query := `
		SELECT id, user_id, posture_type, confidence_score, session_duration, corrections_count, good_time, bad_time, recorded_at
		FROM posture_records
		WHERE user_id = ?
		ORDER BY recorded_at DESC
		LIMIT ?
	`
	var records []entity.PostureRecord
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, userID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		records = records[:0]
		for rows.Next() {
			var rec entity.PostureRecord
			if err := rows.Scan(
				&rec.ID,
				&rec.UserID,
				&rec.PostureType,
				&rec.ConfidenceScore,
				&rec.SessionDuration,
				&rec.CorrectionsCount,
				&rec.GoodTime,
				&rec.BadTime,
				&rec.RecordedAt,
			); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteRecord removes one record. The predicate includes the owner id so
// a caller cannot delete someone else's record by guessing ids; the
// returned count is zero both for an absent record and a foreign one.
func (r *PostureRepository) DeleteRecord(ctx context.Context, recordID, userID uint64) (int64, error) {
	query := `DELETE FROM posture_records WHERE id = ? AND user_id = ?`
	var affected int64
	err := withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query, recordID, userID)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	return affected, err
}

func (r *PostureRepository) ClearForUser(ctx context.Context, userID uint64) (int64, error) {
	query := `DELETE FROM posture_records WHERE user_id = ?`
	var affected int64
	err := withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query, userID)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	return affected, err
}

type ExerciseRepository struct {
	db *sql.DB
}

func NewExerciseRepository(db *sql.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

func (r *ExerciseRepository) List(ctx context.Context) ([]entity.Exercise, error) {
	query := `SELECT id, name, description FROM exercises`
	var exercises []entity.Exercise
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()

		exercises = exercises[:0]
		for rows.Next() {
			var e entity.Exercise
			if err := rows.Scan(&e.ID, &e.Name, &e.Description); err != nil {
				return err
			}
			exercises = append(exercises, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *ExerciseRepository) RecordCompletion(ctx context.Context, completion *entity.ExerciseCompletion) error {
	query := `INSERT INTO user_exercises (user_id, exercise_id) VALUES (?, ?)`
	return withRetry(ctx, func(ctx context.Context) error {
		result, err := r.db.ExecContext(ctx, query, completion.UserID, completion.ExerciseID)
		if err != nil {
			return err
		}

		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		completion.ID = uint64(id)
		return nil
	})
}

func (r *ExerciseRepository) CompletionsForUser(ctx context.Context, userID uint64) ([]entity.ExerciseCompletion, error) {
	query := `
		SELECT id, user_id, exercise_id, completed_at
		FROM user_exercises
		WHERE user_id = ?
		ORDER BY completed_at DESC
	`
	var completions []entity.ExerciseCompletion
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		completions = completions[:0]
		for rows.Next() {
			var c entity.ExerciseCompletion
			if err := rows.Scan(&c.ID, &c.UserID, &c.ExerciseID, &c.CompletedAt); err != nil {
				return err
			}
			completions = append(completions, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return completions, nil
}
