package entity

import (
	"database/sql"
	"time"
)

// AdminUsername is the reserved account excluded from user listings.
const AdminUsername = "admin"

type User struct {
	ID                   uint64
	Username             string
	Email                string
	PasswordHash         string
	FirstName            string
	LastName             string
	BirthDate            sql.NullTime
	Gender               string
	EmailVerified        bool
	VerificationToken    sql.NullString
	TokenExpires         sql.NullTime
	PasswordChangeToken  sql.NullString
	PasswordTokenExpires sql.NullTime
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Profile is the caller-facing view of a User. It never carries the
// password hash or token material.
type Profile struct {
	ID            uint64       `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	BirthDate     sql.NullTime `json:"birth_date"`
	Gender        string       `json:"gender"`
	EmailVerified bool         `json:"email_verified"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		BirthDate:     u.BirthDate,
		Gender:        u.Gender,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserSummary is a listing entry for the admin view. Active defaults to
// true on schemas that predate the status column.
type UserSummary struct {
	Profile
	Active bool `json:"active"`
}
