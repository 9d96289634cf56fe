package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID           uuid.UUID
	ActiveBusinessID *uuid.UUID
	Role             enums.MemberRole
	BusinessType     *enums.BusinessType
	SystemRole       *string
	JTI              string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID           uuid.UUID           `json:"user_id"`
	ActiveBusinessID *uuid.UUID          `json:"active_business_id,omitempty"`
	Role             enums.MemberRole    `json:"role,omitempty"`
	BusinessType     *enums.BusinessType `json:"business_type,omitempty"`
	SystemRole       *string             `json:"system_role,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token carries the platform operator role.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c.SystemRole != nil && *c.SystemRole == enums.SystemRoleAdmin
}
