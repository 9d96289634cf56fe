package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID              uuid.UUID              `json:"id"`
	BusinessID      uuid.UUID              `json:"business_id"`
	UserID          uuid.UUID              `json:"user_id"`
	Role            enums.MemberRole       `json:"role"`
	Status          enums.MembershipStatus `json:"status"`
	Permissions     []string               `json:"permissions"`
	InvitedByUserID *uuid.UUID             `json:"invited_by_user_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// MembershipWithBusiness includes basic business metadata + membership info.
type MembershipWithBusiness struct {
	MembershipID    uuid.UUID              `json:"membership_id"`
	BusinessID      uuid.UUID              `json:"business_id"`
	UserID          uuid.UUID              `json:"user_id"`
	BusinessName    string                 `json:"business_name"`
	BusinessType    enums.BusinessType     `json:"business_type"`
	Role            enums.MemberRole       `json:"role"`
	Status          enums.MembershipStatus `json:"status"`
	Permissions     []string               `json:"permissions"`
	InvitedByUserID *uuid.UUID             `json:"invited_by_user_id,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// BusinessUserDTO mixes membership metadata with the associated user profile.
type BusinessUserDTO struct {
	MembershipID uuid.UUID              `json:"membership_id"`
	BusinessID   uuid.UUID              `json:"business_id"`
	UserID       uuid.UUID              `json:"user_id"`
	Email        string                 `json:"email"`
	FirstName    string                 `json:"first_name"`
	LastName     string                 `json:"last_name"`
	Role         enums.MemberRole       `json:"role"`
	Status       enums.MembershipStatus `json:"membership_status"`
	Permissions  []string               `json:"permissions"`
	CreatedAt    time.Time              `json:"created_at"`
	LastLoginAt  *time.Time             `json:"last_login_at,omitempty"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.BusinessMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:              m.ID,
		BusinessID:      m.BusinessID,
		UserID:          m.UserID,
		Role:            m.Role,
		Status:          m.Status,
		Permissions:     append([]string{}, m.Permissions...),
		InvitedByUserID: copyUUIDPointer(m.InvitedByUserID),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
