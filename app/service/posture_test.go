package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/posturease/ms-go-account/app/repository"
	"github.com/posturease/ms-go-account/app/service"
)

const (
	appendRecordQuery  = `(?s)INSERT INTO posture_records \(user_id, posture_type, confidence_score, session_duration, corrections_count, good_time, bad_time\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?\)`
	recordHistoryQuery = `(?s)SELECT id, user_id, posture_type, confidence_score, session_duration, corrections_count, good_time, bad_time, recorded_at\s+FROM posture_records\s+WHERE user_id = \?\s+ORDER BY recorded_at DESC\s+LIMIT \?`
	removeRecordQuery  = `DELETE FROM posture_records WHERE id = \? AND user_id = \?`
	completeSetQuery   = `INSERT INTO user_exercises \(user_id, exercise_id\) VALUES \(\?, \?\)`
	exerciseListQuery  = `SELECT id, name, description FROM exercises`
)

func newPostureService(t *testing.T, validateRanges bool) (*service.PostureService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	svc := service.NewPostureService(repository.NewPostureRepository(db), repository.NewExerciseRepository(db), validateRanges)
	return svc, mock, func() { _ = db.Close() }
}

func TestPostureService_Append(t *testing.T) {
	svc, mock, cleanup := newPostureService(t, false)
	defer cleanup()

	mock.ExpectExec(appendRecordQuery).
		WithArgs(uint64(1), "slouching", 0.87, sql.NullInt64{Int64: 300, Valid: true}, sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{}).
		WillReturnResult(sqlmock.NewResult(10, 1))

	record, err := svc.Append(context.Background(), 1, service.Measurement{
		PostureType:     "slouching",
		ConfidenceScore: 0.87,
		SessionDuration: sql.NullInt64{Int64: 300, Valid: true},
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if record.ID != 10 {
		t.Fatalf("expected id 10, got %d", record.ID)
	}
}

func TestPostureService_AppendSkipsValidationWhenDisabled(t *testing.T) {
	svc, mock, cleanup := newPostureService(t, false)
	defer cleanup()

	// Out-of-range values pass through unchanged.
	mock.ExpectExec(appendRecordQuery).
		WithArgs(uint64(1), "upright", 1.5, sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{Int64: -5, Valid: true}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := svc.Append(context.Background(), 1, service.Measurement{
		PostureType:     "upright",
		ConfidenceScore: 1.5,
		BadTime:         sql.NullInt64{Int64: -5, Valid: true},
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
}

func TestPostureService_AppendValidatesRangesWhenEnabled(t *testing.T) {
	svc, mock, cleanup := newPostureService(t, true)
	defer cleanup()

	_, err := svc.Append(context.Background(), 1, service.Measurement{
		PostureType:     "upright",
		ConfidenceScore: 1.5,
	})
	if !errors.Is(err, service.ErrInvalidMeasurement) {
		t.Fatalf("expected ErrInvalidMeasurement, got %v", err)
	}

	_, err = svc.Append(context.Background(), 1, service.Measurement{
		PostureType:     "upright",
		ConfidenceScore: 0.5,
		GoodTime:        sql.NullInt64{Int64: -1, Valid: true},
	})
	if !errors.Is(err, service.ErrInvalidMeasurement) {
		t.Fatalf("expected ErrInvalidMeasurement for negative duration, got %v", err)
	}

	// The repository was never reached.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("rejected measurements must not hit storage: %v", err)
	}
}

func TestPostureService_HistoryDefaultLimit(t *testing.T) {
	svc, mock, cleanup := newPostureService(t, false)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "user_id", "posture_type", "confidence_score", "session_duration", "corrections_count", "good_time", "bad_time", "recorded_at"}).
		AddRow(2, 1, "upright", 0.9, sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{}, time.Now()).
		AddRow(1, 1, "slouching", 0.8, sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{}, sql.NullInt64{}, time.Now().Add(-time.Hour))

	mock.ExpectQuery(recordHistoryQuery).
		WithArgs(uint64(1), 100).
		WillReturnRows(rows)

	records, err := svc.History(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(records) != 2 || records[0].ID != 2 {
		t.Fatalf("unexpected history: %+v", records)
	}
}

func TestPostureService_DeleteRecordNotOwned(t *testing.T) {
	svc, mock, cleanup := newPostureService(t, false)
	defer cleanup()

	mock.ExpectExec(removeRecordQuery).
		WithArgs(uint64(7), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.DeleteRecord(context.Background(), 7, 1)
	if !errors.Is(err, service.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestPostureService_RecordExerciseCompletion(t *testing.T) {
	svc, mock, cleanup := newPostureService(t, false)
	defer cleanup()

	mock.ExpectQuery(exerciseListQuery).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow(3, "Chin tucks", "Gently pull the chin back"))
	mock.ExpectExec(completeSetQuery).
		WithArgs(uint64(1), uint64(3)).
		WillReturnResult(sqlmock.NewResult(5, 1))

	exercises, err := svc.ListExercises(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(exercises) != 1 || exercises[0].Name != "Chin tucks" {
		t.Fatalf("unexpected exercises: %+v", exercises)
	}

	completion, err := svc.RecordExerciseCompletion(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if completion.ID != 5 {
		t.Fatalf("expected completion id 5, got %d", completion.ID)
	}
}
