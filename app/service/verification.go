package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/posturease/ms-go-account/app/dto"
	"github.com/posturease/ms-go-account/app/notification"
	"github.com/posturease/ms-go-account/app/repository"
	"github.com/posturease/ms-go-account/config"
)

// VerificationService owns the two token tracks on a user row: email
// verification and password change. The tracks are independent column
// pairs; issuing on one never touches the other.
type VerificationService struct {
	userRepo *repository.UserRepository
	mailer   notification.Mailer
	hasher   *PasswordHasher
	cfg      *config.Config
}

func NewVerificationService(userRepo *repository.UserRepository, mailer notification.Mailer, hasher *PasswordHasher, cfg *config.Config) *VerificationService {
	return &VerificationService{
		userRepo: userRepo,
		mailer:   mailer,
		hasher:   hasher,
		cfg:      cfg,
	}
}

// IssueEmailToken mints and persists a fresh verification token with an
// absolute expiry, overwriting (and thereby invalidating) any prior one.
func (s *VerificationService) IssueEmailToken(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	token, err := GenerateToken(s.cfg.TokenLength)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SaveVerificationToken(ctx, userID, token, time.Now().Add(ttl)); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeEmailToken validates by exact match and, on success, marks the
// email verified and clears the token in a single statement. Expired
// tokens are rejected but left in place; the next issuance overwrites them.
func (s *VerificationService) ConsumeEmailToken(ctx context.Context, token string) (*dto.VerifiedAccount, error) {
	user, err := s.userRepo.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if user.TokenExpires.Valid && user.TokenExpires.Time.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, err
	}

	profile := user.Profile()
	profile.EmailVerified = true
	return &dto.VerifiedAccount{Profile: profile}, nil
}

func (s *VerificationService) IssuePasswordChangeToken(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	token, err := GenerateToken(s.cfg.TokenLength)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SavePasswordChangeToken(ctx, userID, token, time.Now().Add(ttl)); err != nil {
		return "", err
	}
	return token, nil
}

// ValidatePasswordChangeToken checks the token without clearing it.
// Clearing is a separate step so the caller can validate, collect the new
// password, commit it, and only then finalize. Until cleared or expired the
// token stays replayable.
func (s *VerificationService) ValidatePasswordChangeToken(ctx context.Context, token string) (*dto.ValidatedAccount, error) {
	user, err := s.userRepo.FindByPasswordChangeToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	if user.PasswordTokenExpires.Valid && user.PasswordTokenExpires.Time.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	return &dto.ValidatedAccount{Profile: user.Profile()}, nil
}

func (s *VerificationService) ClearPasswordChangeToken(ctx context.Context, userID uint64) error {
	return s.userRepo.ClearPasswordChangeToken(ctx, userID)
}

// RequestEmailVerification issues a registration token and mails it. A
// delivery failure is reported as ErrDeliveryFailed and does not undo the
// issuance.
func (s *VerificationService) RequestEmailVerification(ctx context.Context, userID uint64) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	token, err := s.IssueEmailToken(ctx, userID, s.cfg.VerificationTokenTTL)
	if err != nil {
		return err
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Username, token, notification.KindRegistration); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to send verification email")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// RequestPasswordChange looks the account up by email, issues a
// password-change token and mails it.
func (s *VerificationService) RequestPasswordChange(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	token, err := s.IssuePasswordChangeToken(ctx, user.ID, s.cfg.PasswordChangeTokenTTL)
	if err != nil {
		return err
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Username, token, notification.KindPasswordChange); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to send password change email")
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// CompletePasswordChange finishes the token-verified track: validate, set
// the new password, clear the token, then send the changed notice. The
// notice is best effort; a failed send never undoes the change.
func (s *VerificationService) CompletePasswordChange(ctx context.Context, token, newPassword string) error {
	validated, err := s.ValidatePasswordChangeToken(ctx, token)
	if err != nil {
		return err
	}

	if err := s.cfg.PasswordPolicy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, validated.Profile.ID, passwordHash); err != nil {
		return err
	}

	if err := s.ClearPasswordChangeToken(ctx, validated.Profile.ID); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordChangedNotice(ctx, validated.Profile.Email, validated.Profile.Username); err != nil {
		logrus.WithError(err).WithField("user_id", validated.Profile.ID).Warn("Failed to send password changed notice")
	}
	return nil
}
