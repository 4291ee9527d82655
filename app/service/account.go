package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/posturease/ms-go-account/app/dto"
	"github.com/posturease/ms-go-account/app/entity"
	"github.com/posturease/ms-go-account/app/repository"
	"github.com/posturease/ms-go-account/config"
)

type Claims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Registration struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	BirthDate sql.NullTime
	Gender    string
}

type ProfileUpdate struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	BirthDate sql.NullTime
	Gender    string
}

type AccountService struct {
	db       *sql.DB
	userRepo *repository.UserRepository
	hasher   *PasswordHasher
	cfg      *config.Config
}

func NewAccountService(db *sql.DB, userRepo *repository.UserRepository, hasher *PasswordHasher, cfg *config.Config) *AccountService {
	return &AccountService{
		db:       db,
		userRepo: userRepo,
		hasher:   hasher,
		cfg:      cfg,
	}
}

// Register creates the account unverified and without tokens. The
// pre-check gives the friendly error; the unique indexes remain the
// authoritative guard and a lost race maps to the same outcome.
func (s *AccountService) Register(ctx context.Context, reg Registration) (*dto.RegisterResult, error) {
	usernameTaken, emailTaken, err := s.userRepo.FindConflict(ctx, reg.Username, reg.Email)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, ErrUsernameTaken
	}
	if emailTaken {
		return nil, ErrEmailTaken
	}

	if err := s.cfg.PasswordPolicy.Validate(reg.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Username:      reg.Username,
		Email:         reg.Email,
		PasswordHash:  passwordHash,
		FirstName:     reg.FirstName,
		LastName:      reg.LastName,
		BirthDate:     reg.BirthDate,
		Gender:        reg.Gender,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.DuplicateEntryOn(err, "username") {
			return nil, ErrUsernameTaken
		}
		if repository.IsDuplicateEntry(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &dto.RegisterResult{Profile: user.Profile()}, nil
}

// Authenticate verifies the password for an exact username match. An
// unknown username and a wrong password return the same error.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*dto.AuthResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResult{
		Profile:     user.Profile(),
		AccessToken: accessToken,
		ExpiresIn:   int64(s.cfg.JWTAccessTokenTTL.Seconds()),
	}, nil
}

// ChangePassword is the in-session change, guarded by the old password.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := s.cfg.PasswordPolicy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, userID, passwordHash)
}

// UpdateProfile checks uniqueness against every other row, applies the
// update and re-reads the result inside one transaction.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint64, update ProfileUpdate) (*entity.Profile, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRepo := s.userRepo.WithTx(tx)

	taken, err := txRepo.ConflictExcluding(ctx, update.Username, update.Email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrProfileConflict
	}

	user, err := txRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.Username = update.Username
	user.Email = update.Email
	user.FirstName = update.FirstName
	user.LastName = update.LastName
	user.BirthDate = update.BirthDate
	user.Gender = update.Gender

	if err := txRepo.UpdateProfile(ctx, user); err != nil {
		if repository.IsDuplicateEntry(err) {
			return nil, ErrProfileConflict
		}
		return nil, err
	}

	updated, err := txRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return updated.Profile(), nil
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Profile(), nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]entity.UserSummary, error) {
	return s.userRepo.List(ctx)
}

func (s *AccountService) SetStatus(ctx context.Context, userID uint64, active bool) error {
	return s.userRepo.SetStatus(ctx, userID, active)
}

func (s *AccountService) Delete(ctx context.Context, userID uint64) error {
	return s.userRepo.Delete(ctx, userID)
}

func (s *AccountService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *AccountService) generateAccessToken(user *entity.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.cfg.JWTAccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
