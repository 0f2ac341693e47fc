package auth

import (
	"time"

	"github.com/techstore/storefront-backend/pkg/db/models"
	"github.com/techstore/storefront-backend/pkg/enums"
)

// SignUpRequest captures the sign-up form.
type SignUpRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AgreeToTerms    bool   `json:"agreeToTerms"`
	Newsletter      bool   `json:"newsletter"`
}

// SignInRequest captures the user credentials sent to the sign-in endpoint.
type SignInRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FederatedRequest carries the credential issued by a social provider.
type FederatedRequest struct {
	Credential string `json:"credential" validate:"required"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Newsletter bool   `json:"newsletter"`
}

// UserDTO is the public view of a user record.
type UserDTO struct {
	UID         string         `json:"uid"`
	FirstName   string         `json:"firstName,omitempty"`
	LastName    string         `json:"lastName,omitempty"`
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName"`
	Newsletter  bool           `json:"newsletter"`
	Role        enums.UserRole `json:"role"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// FromModel maps a user record to its public view.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		UID:         u.UID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Newsletter:  u.Newsletter,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}

// SessionResponse contains the tokens and user produced by a successful sign-in.
type SessionResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	IsNewUser    bool     `json:"is_new_user"`
	User         *UserDTO `json:"user"`
}
