package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "github.com/posturease/ms-go-account/app/dto/http"
	"github.com/posturease/ms-go-account/app/service"
)

type UserController struct {
	accounts *service.AccountService
}

func NewUserController(accounts *service.AccountService) *UserController {
	return &UserController{accounts: accounts}
}

func pathID(ctx echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	return id, err == nil
}

func (c *UserController) List(ctx echo.Context) error {
	users, err := c.accounts.ListUsers(ctx.Request().Context())
	if err != nil {
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.ListUsersResponse{Users: users})
}

func (c *UserController) Delete(ctx echo.Context) error {
	userID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
	}

	if err := c.accounts.Delete(ctx.Request().Context(), userID); err != nil {
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "user deleted successfully"})
}

func (c *UserController) SetStatus(ctx echo.Context) error {
	userID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
	}

	var req dto.SetStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if err := c.accounts.SetStatus(ctx.Request().Context(), userID, req.Active); err != nil {
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "user status updated successfully"})
}

func (c *UserController) UpdateProfile(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.UpdateProfileRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Username == "" || req.Email == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "username and email are required"})
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "birth_date must be YYYY-MM-DD"})
	}

	profile, err := c.accounts.UpdateProfile(ctx.Request().Context(), userID, service.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileConflict):
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return storageError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, profile)
}
