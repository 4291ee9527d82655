package http

import "github.com/posturease/ms-go-account/app/entity"

type RegisterResponse struct {
	Profile *entity.Profile `json:"profile"`
	Message string          `json:"message"`
}

type LoginResponse struct {
	Profile     *entity.Profile `json:"profile"`
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyEmailResponse struct {
	Profile *entity.Profile `json:"profile"`
	Message string          `json:"message"`
}

type ValidateTokenResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
}

type ListUsersResponse struct {
	Users []entity.UserSummary `json:"users"`
}

type AppendRecordResponse struct {
	Record *entity.PostureRecord `json:"record"`
}

type HistoryResponse struct {
	Records []entity.PostureRecord `json:"records"`
}

type ClearHistoryResponse struct {
	Deleted int64 `json:"deleted"`
}

type ExercisesResponse struct {
	Exercises []entity.Exercise `json:"exercises"`
}

type CompletionsResponse struct {
	Completions []entity.ExerciseCompletion `json:"completions"`
}

type CompleteExerciseResponse struct {
	Completion *entity.ExerciseCompletion `json:"completion"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
