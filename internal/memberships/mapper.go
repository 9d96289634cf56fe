package memberships

import (
	"time"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
)

type membershipWithBusinessRow struct {
	models.BusinessMembership
	BusinessName string             `gorm:"column:business_name"`
	BusinessType enums.BusinessType `gorm:"column:business_type"`
}

func membershipWithBusinessFromRow(row membershipWithBusinessRow) MembershipWithBusiness {
	return MembershipWithBusiness{
		MembershipID:    row.ID,
		BusinessID:      row.BusinessID,
		UserID:          row.UserID,
		BusinessName:    row.BusinessName,
		BusinessType:    row.BusinessType,
		Role:            row.Role,
		Status:          row.Status,
		Permissions:     append([]string{}, row.Permissions...),
		InvitedByUserID: copyUUIDPointer(row.InvitedByUserID),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func membershipRowsToDTO(rows []membershipWithBusinessRow) []MembershipWithBusiness {
	out := make([]MembershipWithBusiness, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipWithBusinessFromRow(row))
	}
	return out
}

type businessUserRow struct {
	models.BusinessMembership
	Email       string     `gorm:"column:email"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    string     `gorm:"column:last_name"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func businessUsersFromRows(rows []businessUserRow) []BusinessUserDTO {
	out := make([]BusinessUserDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, BusinessUserDTO{
			MembershipID: row.ID,
			BusinessID:   row.BusinessID,
			UserID:       row.UserID,
			Email:        row.Email,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Role:         row.Role,
			Status:       row.Status,
			Permissions:  append([]string{}, row.Permissions...),
			CreatedAt:    row.CreatedAt,
			LastLoginAt:  row.LastLoginAt,
		})
	}
	return out
}
