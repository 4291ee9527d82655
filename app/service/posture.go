package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/posturease/ms-go-account/app/entity"
	"github.com/posturease/ms-go-account/app/repository"
)

const defaultHistoryLimit = 100

type Measurement struct {
	PostureType      string
	ConfidenceScore  float64
	SessionDuration  sql.NullInt64
	CorrectionsCount sql.NullInt64
	GoodTime         sql.NullInt64
	BadTime          sql.NullInt64
}

type PostureService struct {
	postureRepo  *repository.PostureRepository
	exerciseRepo *repository.ExerciseRepository
	// validateRanges enforces confidence 0..1 and non-negative durations.
	// Off by default; the legacy pipeline stored measurements as given.
	validateRanges bool
}

func NewPostureService(postureRepo *repository.PostureRepository, exerciseRepo *repository.ExerciseRepository, validateRanges bool) *PostureService {
	return &PostureService{
		postureRepo:    postureRepo,
		exerciseRepo:   exerciseRepo,
		validateRanges: validateRanges,
	}
}

func (s *PostureService) Append(ctx context.Context, userID uint64, m Measurement) (*entity.PostureRecord, error) {
	if s.validateRanges {
		if err := validateMeasurement(m); err != nil {
			return nil, err
		}
	}

	record := &entity.PostureRecord{
		UserID:           userID,
		PostureType:      m.PostureType,
		ConfidenceScore:  m.ConfidenceScore,
		SessionDuration:  m.SessionDuration,
		CorrectionsCount: m.CorrectionsCount,
		GoodTime:         m.GoodTime,
		BadTime:          m.BadTime,
	}
	if err := s.postureRepo.Insert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *PostureService) History(ctx context.Context, userID uint64, limit int) ([]entity.PostureRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.postureRepo.History(ctx, userID, limit)
}

func (s *PostureService) DeleteRecord(ctx context.Context, recordID, userID uint64) error {
	affected, err := s.postureRepo.DeleteRecord(ctx, recordID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PostureService) ClearHistory(ctx context.Context, userID uint64) (int64, error) {
	return s.postureRepo.ClearForUser(ctx, userID)
}

func (s *PostureService) ListExercises(ctx context.Context) ([]entity.Exercise, error) {
	return s.exerciseRepo.List(ctx)
}

func (s *PostureService) RecordExerciseCompletion(ctx context.Context, userID, exerciseID uint64) (*entity.ExerciseCompletion, error) {
	completion := &entity.ExerciseCompletion{
		UserID:     userID,
		ExerciseID: exerciseID,
	}
	if err := s.exerciseRepo.RecordCompletion(ctx, completion); err != nil {
		return nil, err
	}
	return completion, nil
}

func (s *PostureService) CompletedExercises(ctx context.Context, userID uint64) ([]entity.ExerciseCompletion, error) {
	return s.exerciseRepo.CompletionsForUser(ctx, userID)
}

func validateMeasurement(m Measurement) error {
	if m.ConfidenceScore < 0 || m.ConfidenceScore > 1 {
		return fmt.Errorf("%w: confidence_score must be between 0 and 1", ErrInvalidMeasurement)
	}
	for _, field := range []struct {
		name  string
		value sql.NullInt64
	}{
		{"session_duration", m.SessionDuration},
		{"corrections_count", m.CorrectionsCount},
		{"good_time", m.GoodTime},
		{"bad_time", m.BadTime},
	} {
		if field.value.Valid && field.value.Int64 < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidMeasurement, field.name)
		}
	}
	return nil
}
