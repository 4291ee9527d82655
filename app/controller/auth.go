package controller

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	dto "github.com/posturease/ms-go-account/app/dto/http"
	"github.com/posturease/ms-go-account/app/repository"
	"github.com/posturease/ms-go-account/app/service"
)

type AuthController struct {
	accounts     *service.AccountService
	verification *service.VerificationService
}

func NewAuthController(accounts *service.AccountService, verification *service.VerificationService) *AuthController {
	return &AuthController{accounts: accounts, verification: verification}
}

func parseBirthDate(value string) (sql.NullTime, error) {
	if value == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

func (c *AuthController) Register(ctx echo.Context) error {
	var req dto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "username, email and password are required"})
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "birth_date must be YYYY-MM-DD"})
	}

	result, err := c.accounts.Register(ctx.Request().Context(), service.Registration{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrWeakPassword):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}
		return storageError(ctx, err)
	}

	// Delivery failure does not undo the registration or the token.
	if err := c.verification.RequestEmailVerification(ctx.Request().Context(), result.Profile.ID); err != nil &&
		!errors.Is(err, service.ErrDeliveryFailed) {
		return storageError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, dto.RegisterResponse{
		Profile: result.Profile,
		Message: "registration successful, please verify your email address",
	})
}

func (c *AuthController) Login(ctx echo.Context) error {
	var req dto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Username == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "username and password are required"})
	}

	result, err := c.accounts.Authenticate(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
		}
		return storageError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, dto.LoginResponse{
		Profile:     result.Profile,
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}

func (c *AuthController) VerifyEmail(ctx echo.Context) error {
	token := ctx.QueryParam("token")
	if token == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "token is required"})
	}

	verified, err := c.verification.ConsumeEmailToken(ctx.Request().Context(), token)
	if err != nil {
		return tokenError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, dto.VerifyEmailResponse{
		Profile: verified.Profile,
		Message: "email verified successfully",
	})
}

func (c *AuthController) ResendVerification(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	if err := c.verification.RequestEmailVerification(ctx.Request().Context(), userID); err != nil {
		if errors.Is(err, service.ErrDeliveryFailed) {
			return ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return storageError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "verification email sent"})
}

func (c *AuthController) RequestPasswordChange(ctx echo.Context) error {
	var req dto.RequestPasswordChangeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Email == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email is required"})
	}

	err := c.verification.RequestPasswordChange(ctx.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrDeliveryFailed) {
			return ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			// Same response as success so the endpoint is not an
			// account-enumeration oracle.
			return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "if the address is registered, an email has been sent"})
		}
		return storageError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "if the address is registered, an email has been sent"})
}

// ValidatePasswordChange checks the token without consuming it, so the
// caller can show the new-password form before committing.
func (c *AuthController) ValidatePasswordChange(ctx echo.Context) error {
	token := ctx.QueryParam("token")
	if token == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "token is required"})
	}

	validated, err := c.verification.ValidatePasswordChangeToken(ctx.Request().Context(), token)
	if err != nil {
		return tokenError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, dto.ValidateTokenResponse{
		Valid:    true,
		Username: validated.Profile.Username,
	})
}

func (c *AuthController) CompletePasswordChange(ctx echo.Context) error {
	var req dto.CompletePasswordChangeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Token == "" || req.NewPassword == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "token and new_password are required"})
	}

	err := c.verification.CompletePasswordChange(ctx.Request().Context(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrWeakPassword) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}
		return tokenError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "password changed successfully"})
}

func (c *AuthController) ChangePassword(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.ChangePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "old_password and new_password are required"})
	}

	err := c.accounts.ChangePassword(ctx.Request().Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrWeakPassword):
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return storageError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "password changed successfully"})
}

func tokenError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidToken):
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrTokenExpired):
		return ctx.JSON(http.StatusGone, dto.ErrorResponse{Error: err.Error()})
	}
	return storageError(ctx, err)
}

func storageError(ctx echo.Context, err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return ctx.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "service temporarily unavailable"})
	}
	return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}
