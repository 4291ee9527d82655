package service

import "errors"

var (
	ErrUsernameTaken   = errors.New("username already exists")
	ErrEmailTaken      = errors.New("email already registered")
	ErrProfileConflict = errors.New("username or email already taken by another user")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. The two must stay indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid verification token")
	ErrTokenExpired       = errors.New("verification token has expired")
	// ErrRecordNotFound covers both an absent record and one owned by a
	// different user.
	ErrRecordNotFound     = errors.New("record not found or access denied")
	ErrWeakPassword       = errors.New("password does not meet policy requirements")
	ErrInvalidMeasurement = errors.New("measurement out of range")
	// ErrDeliveryFailed reports a notification-port failure. Token state
	// persisted before the send attempt is kept.
	ErrDeliveryFailed = errors.New("email delivery failed")
)
