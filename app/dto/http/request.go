package http

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date,omitempty"`
	Gender    string `json:"gender,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type RequestPasswordChangeRequest struct {
	Email string `json:"email"`
}

type CompletePasswordChangeRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type SetStatusRequest struct {
	Active bool `json:"active"`
}

type AppendRecordRequest struct {
	PostureType      string  `json:"posture_type"`
	ConfidenceScore  float64 `json:"confidence_score"`
	SessionDuration  *int64  `json:"session_duration,omitempty"`
	CorrectionsCount *int64  `json:"corrections_count,omitempty"`
	GoodTime         *int64  `json:"good_time,omitempty"`
	BadTime          *int64  `json:"bad_time,omitempty"`
}

type CompleteExerciseRequest struct {
	ExerciseID uint64 `json:"exercise_id"`
}
