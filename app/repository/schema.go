package repository

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"
)

// Capabilities describes which optional schema pieces the connected
// database actually has. Detection runs once at startup; repositories never
// probe INFORMATION_SCHEMA per call.
type Capabilities struct {
	// UserStatus is true when users.status exists. Without it SetStatus
	// degrades to a timestamp touch and listings report every account
	// active.
	UserStatus bool
	// FaceEmbeddings is true when the user_face_embeddings table exists
	// and must be included in the account cascade delete.
	FaceEmbeddings bool
}

func DetectCapabilities(ctx context.Context, db *sql.DB) (Capabilities, error) {
	var caps Capabilities

	err := withRetry(ctx, func(ctx context.Context) error {
		const columnQuery = `
			SELECT COUNT(*) FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'users' AND COLUMN_NAME = 'status'
		`
		var n int
		if err := db.QueryRowContext(ctx, columnQuery).Scan(&n); err != nil {
			return err
		}
		caps.UserStatus = n > 0

		const tableQuery = `
			SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'user_face_embeddings'
		`
		if err := db.QueryRowContext(ctx, tableQuery).Scan(&n); err != nil {
			return err
		}
		caps.FaceEmbeddings = n > 0
		return nil
	})
	if err != nil {
		return Capabilities{}, err
	}

	if !caps.UserStatus {
		logrus.Warn("users.status column missing; status toggles degrade to timestamp touches")
	}

	return caps, nil
}
