package auth

import (
	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/internal/users"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// BusinessSummary describes the business metadata returned after login.
type BusinessSummary struct {
	ID      uuid.UUID          `json:"id"`
	Name    string             `json:"name"`
	Type    enums.BusinessType `json:"type"`
	LogoURL *string            `json:"logo_url,omitempty"`
}

// LoginResponse contains the tokens, user, and business list produced by a successful login.
type LoginResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	Businesses   []BusinessSummary `json:"businesses"`
	User         *users.UserDTO    `json:"user"`
}

// AdminLoginResponse mirrors LoginResponse while exposing the admin user.
type AdminLoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// RefreshResult returns the rotated token pair.
type RefreshResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
