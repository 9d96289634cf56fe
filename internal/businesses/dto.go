package businesses

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	"github.com/dmcastellanos/supplyline-backend/pkg/types"
)

// BusinessDTO exposes safe tenant data in API responses.
type BusinessDTO struct {
	ID                 uuid.UUID            `json:"id"`
	Type               enums.BusinessType   `json:"type"`
	CompanyName        string               `json:"company_name"`
	TradingName        *string              `json:"trading_name,omitempty"`
	Description        *string              `json:"description,omitempty"`
	Phone              *string              `json:"phone,omitempty"`
	Email              *string              `json:"email,omitempty"`
	Address            *string              `json:"address,omitempty"`
	City               *string              `json:"city,omitempty"`
	ApprovalStatus     enums.ApprovalStatus `json:"approval_status"`
	SubscriptionActive bool                 `json:"subscription_active"`
	BankDetails        *types.BankDetails   `json:"bank_details,omitempty"`
	LogoURL            *string              `json:"logo_url,omitempty"`
	OwnerID            uuid.UUID            `json:"owner_id"`
	LastActiveAt       *time.Time           `json:"last_active_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// BranchDTO exposes a restaurant delivery location.
type BranchDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     *string   `json:"phone,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateBusinessDTO holds registration-time data for a new tenant.
type CreateBusinessDTO struct {
	Type        enums.BusinessType
	CompanyName string
	TradingName *string
	Description *string
	Phone       *string
	Email       *string
	Address     *string
	City        *string
	OwnerID     uuid.UUID
}

// FromModel maps the persisted business into a DTO.
func FromModel(m *models.Business) *BusinessDTO {
	if m == nil {
		return nil
	}

	dto := &BusinessDTO{
		ID:                 m.ID,
		Type:               m.Type,
		CompanyName:        m.CompanyName,
		TradingName:        m.TradingName,
		Description:        m.Description,
		Phone:              m.Phone,
		Email:              m.Email,
		Address:            m.Address,
		City:               m.City,
		ApprovalStatus:     m.ApprovalStatus,
		SubscriptionActive: m.SubscriptionActive,
		LogoURL:            m.LogoURL,
		OwnerID:            m.OwnerID,
		LastActiveAt:       m.LastActiveAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}

	if m.BankDetails != nil {
		cpy := *m.BankDetails
		dto.BankDetails = &cpy
	}

	return dto
}

// BranchFromModel maps a branch row into a DTO.
func BranchFromModel(m *models.Branch) *BranchDTO {
	if m == nil {
		return nil
	}
	return &BranchDTO{
		ID:        m.ID,
		Name:      m.Name,
		Address:   m.Address,
		Phone:     m.Phone,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
	}
}

// ToModel prepares the GORM model from registration data. New tenants
// always start pending approval with an inactive subscription.
func (c CreateBusinessDTO) ToModel() *models.Business {
	return &models.Business{
		Type:               c.Type,
		CompanyName:        c.CompanyName,
		TradingName:        c.TradingName,
		Description:        c.Description,
		Phone:              c.Phone,
		Email:              c.Email,
		Address:            c.Address,
		City:               c.City,
		ApprovalStatus:     enums.ApprovalStatusPending,
		SubscriptionActive: false,
		OwnerID:            c.OwnerID,
	}
}
