package dto

import "github.com/posturease/ms-go-account/app/entity"

type RegisterResult struct {
	Profile *entity.Profile
}

type AuthResult struct {
	Profile     *entity.Profile
	AccessToken string
	ExpiresIn   int64
}

type VerifiedAccount struct {
	Profile *entity.Profile
}

// ValidatedAccount is the outcome of a non-destructive password-change
// token check. The token stays live until explicitly cleared.
type ValidatedAccount struct {
	Profile *entity.Profile
}
