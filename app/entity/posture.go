package entity

import (
	"database/sql"
	"time"
)

type PostureRecord struct {
	ID               uint64        `json:"id"`
	UserID           uint64        `json:"user_id"`
	PostureType      string        `json:"posture_type"`
	ConfidenceScore  float64       `json:"confidence_score"`
	SessionDuration  sql.NullInt64 `json:"session_duration"`
	CorrectionsCount sql.NullInt64 `json:"corrections_count"`
	GoodTime         sql.NullInt64 `json:"good_time"`
	BadTime          sql.NullInt64 `json:"bad_time"`
	RecordedAt       time.Time     `json:"recorded_at"`
}

type Exercise struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ExerciseCompletion is append-only; rows are never updated.
type ExerciseCompletion struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	ExerciseID  uint64    `json:"exercise_id"`
	CompletedAt time.Time `json:"completed_at"`
}
