package controller

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	dto "github.com/posturease/ms-go-account/app/dto/http"
	"github.com/posturease/ms-go-account/app/service"
)

type PostureController struct {
	posture *service.PostureService
}

func NewPostureController(posture *service.PostureService) *PostureController {
	return &PostureController{posture: posture}
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func (c *PostureController) Append(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.AppendRecordRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.PostureType == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "posture_type is required"})
	}

	record, err := c.posture.Append(ctx.Request().Context(), userID, service.Measurement{
		PostureType:      req.PostureType,
		ConfidenceScore:  req.ConfidenceScore,
		SessionDuration:  nullInt(req.SessionDuration),
		CorrectionsCount: nullInt(req.CorrectionsCount),
		GoodTime:         nullInt(req.GoodTime),
		BadTime:          nullInt(req.BadTime),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidMeasurement) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		}
		return storageError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, dto.AppendRecordResponse{Record: record})
}

func (c *PostureController) History(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = n
	}

	records, err := c.posture.History(ctx.Request().Context(), userID, limit)
	if err != nil {
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.HistoryResponse{Records: records})
}

func (c *PostureController) DeleteRecord(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	recordID, ok := pathID(ctx, "id")
	if !ok {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid record id"})
	}

	if err := c.posture.DeleteRecord(ctx.Request().Context(), recordID, userID); err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		}
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "record deleted successfully"})
}

func (c *PostureController) ClearHistory(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	deleted, err := c.posture.ClearHistory(ctx.Request().Context(), userID)
	if err != nil {
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.ClearHistoryResponse{Deleted: deleted})
}

func (c *PostureController) ListExercises(ctx echo.Context) error {
	exercises, err := c.posture.ListExercises(ctx.Request().Context())
	if err != nil {
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.ExercisesResponse{Exercises: exercises})
}

func (c *PostureController) CompleteExercise(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	var req dto.CompleteExerciseRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.ExerciseID == 0 {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "exercise_id is required"})
	}

	completion, err := c.posture.RecordExerciseCompletion(ctx.Request().Context(), userID, req.ExerciseID)
	if err != nil {
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, dto.CompleteExerciseResponse{Completion: completion})
}

func (c *PostureController) CompletedExercises(ctx echo.Context) error {
	userID, ok := ctx.Get("user_id").(uint64)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
	}

	completions, err := c.posture.CompletedExercises(ctx.Request().Context(), userID)
	if err != nil {
		return storageError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, dto.CompletionsResponse{Completions: completions})
}
