package businesses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/internal/memberships"
	"github.com/dmcastellanos/supplyline-backend/internal/users"
	"github.com/dmcastellanos/supplyline-backend/pkg/config"
	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
	"github.com/dmcastellanos/supplyline-backend/pkg/security"
	"github.com/dmcastellanos/supplyline-backend/pkg/types"
)

type businessRepository interface {
	Create(ctx context.Context, dto CreateBusinessDTO) (*models.Business, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	Update(ctx context.Context, business *models.Business) error
	ListByApprovalStatus(ctx context.Context, status enums.ApprovalStatus, params pagination.Params) ([]models.Business, string, error)
	UpdateApprovalStatus(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus) error
	CreateBranch(ctx context.Context, branch *models.Branch) error
	FindBranch(ctx context.Context, businessID, branchID uuid.UUID) (*models.Branch, error)
	ListBranches(ctx context.Context, businessID uuid.UUID) ([]models.Branch, error)
	UpdateBranch(ctx context.Context, branch *models.Branch) error
	ClearDefaultBranch(ctx context.Context, businessID uuid.UUID) error
	DeleteBranch(ctx context.Context, businessID, branchID uuid.UUID) error
}

type membershipsRepository interface {
	UserHasRole(ctx context.Context, userID, businessID uuid.UUID, roles ...enums.MemberRole) (bool, error)
	ListBusinessUsers(ctx context.Context, businessID uuid.UUID) ([]memberships.BusinessUserDTO, error)
	GetMembership(ctx context.Context, userID, businessID uuid.UUID) (*models.BusinessMembership, error)
	CreateMembership(ctx context.Context, businessID, userID uuid.UUID, role enums.MemberRole, permissions []enums.Permission, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.BusinessMembership, error)
	UpdatePermissions(ctx context.Context, businessID, userID uuid.UUID, permissions []enums.Permission) error
	DeleteMembership(ctx context.Context, businessID, userID uuid.UUID) error
	CountMembersWithRoles(ctx context.Context, businessID uuid.UUID, roles ...enums.MemberRole) (int64, error)
}

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateBusinessIDs(ctx context.Context, id uuid.UUID, businessIDs []uuid.UUID) error
}

// Service exposes business, membership, and branch operations.
type Service interface {
	Register(ctx context.Context, ownerID uuid.UUID, input RegisterBusinessInput) (*BusinessDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*BusinessDTO, error)
	Update(ctx context.Context, userID, businessID uuid.UUID, input UpdateBusinessInput) (*BusinessDTO, error)

	ListUsers(ctx context.Context, userID, businessID uuid.UUID) ([]memberships.BusinessUserDTO, error)
	InviteUser(ctx context.Context, inviterID, businessID uuid.UUID, input InviteUserInput) (*memberships.BusinessUserDTO, string, error)
	UpdateUserPermissions(ctx context.Context, actorID, businessID, targetUserID uuid.UUID, permissions []enums.Permission) error
	RemoveUser(ctx context.Context, actorID, businessID, targetUserID uuid.UUID) error

	CreateBranch(ctx context.Context, userID, businessID uuid.UUID, input BranchInput) (*BranchDTO, error)
	ListBranches(ctx context.Context, userID, businessID uuid.UUID) ([]BranchDTO, error)
	UpdateBranch(ctx context.Context, userID, businessID, branchID uuid.UUID, input BranchInput) (*BranchDTO, error)
	DeleteBranch(ctx context.Context, userID, businessID, branchID uuid.UUID) error

	ListPendingApproval(ctx context.Context, params pagination.Params) ([]BusinessDTO, string, error)
	Approve(ctx context.Context, businessID uuid.UUID) (*BusinessDTO, error)
	Reject(ctx context.Context, businessID uuid.UUID) (*BusinessDTO, error)
}

type service struct {
	repo        businessRepository
	memberships membershipsRepository
	users       usersRepository
	passwordCfg config.PasswordConfig
}

// NewService builds a business service with the provided repositories.
func NewService(repo businessRepository, memberships membershipsRepository, usersRepo usersRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("business repository required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		repo:        repo,
		memberships: memberships,
		users:       usersRepo,
		passwordCfg: passwordCfg,
	}, nil
}

// RegisterBusinessInput captures the data required to register a tenant.
type RegisterBusinessInput struct {
	Type        enums.BusinessType
	CompanyName string
	TradingName *string
	Description *string
	Phone       *string
	Email       *string
	Address     *string
	City        *string
}

// UpdateBusinessInput captures the allowed business fields for mutation.
type UpdateBusinessInput struct {
	CompanyName *string
	TradingName *string
	Description *string
	Phone       *string
	Email       *string
	Address     *string
	City        *string
	BankDetails *types.BankDetails
	LogoURL     *string
}

// InviteUserInput captures the data required to invite a business user.
type InviteUserInput struct {
	Email       string
	FirstName   string
	LastName    string
	Role        enums.MemberRole
	Permissions []enums.Permission
}

// BranchInput captures branch creation and update fields.
type BranchInput struct {
	Name      string
	Address   string
	Phone     *string
	IsDefault bool
}

func (s *service) Register(ctx context.Context, ownerID uuid.UUID, input RegisterBusinessInput) (*BusinessDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid business type")
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}

	business, err := s.repo.Create(ctx, CreateBusinessDTO{
		Type:        input.Type,
		CompanyName: strings.TrimSpace(input.CompanyName),
		TradingName: input.TradingName,
		Description: input.Description,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		City:        input.City,
		OwnerID:     ownerID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create business")
	}

	if _, err := s.memberships.CreateMembership(ctx, business.ID, ownerID, enums.MemberRoleOwner, nil, nil, enums.MembershipStatusActive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create owner membership")
	}

	return FromModel(business), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*BusinessDTO, error) {
	business, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}
	return FromModel(business), nil
}

func (s *service) Update(ctx context.Context, userID, businessID uuid.UUID, input UpdateBusinessInput) (*BusinessDTO, error) {
	if err := s.requireRole(ctx, userID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return nil, err
	}

	business, err := s.repo.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}

	if input.CompanyName != nil {
		business.CompanyName = *input.CompanyName
	}
	if input.TradingName != nil {
		business.TradingName = cloneStringPtr(input.TradingName)
	}
	if input.Description != nil {
		business.Description = cloneStringPtr(input.Description)
	}
	if input.Phone != nil {
		business.Phone = cloneStringPtr(input.Phone)
	}
	if input.Email != nil {
		business.Email = cloneStringPtr(input.Email)
	}
	if input.Address != nil {
		business.Address = cloneStringPtr(input.Address)
	}
	if input.City != nil {
		business.City = cloneStringPtr(input.City)
	}
	if input.BankDetails != nil {
		cpy := *input.BankDetails
		business.BankDetails = &cpy
	}
	if input.LogoURL != nil {
		business.LogoURL = cloneStringPtr(input.LogoURL)
	}

	if err := s.repo.Update(ctx, business); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update business")
	}
	return FromModel(business), nil
}

func (s *service) ListUsers(ctx context.Context, userID, businessID uuid.UUID) ([]memberships.BusinessUserDTO, error) {
	if err := s.requireRole(ctx, userID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return nil, err
	}

	rows, err := s.memberships.ListBusinessUsers(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list business users")
	}
	return rows, nil
}

func (s *service) InviteUser(ctx context.Context, inviterID, businessID uuid.UUID, input InviteUserInput) (*memberships.BusinessUserDTO, string, error) {
	if err := s.requireRole(ctx, inviterID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return nil, "", err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !input.Role.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if input.Role == enums.MemberRoleOwner {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "cannot invite a user as owner")
	}

	var usr *models.User
	var tempPassword string
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			usr, tempPassword, err = s.createNewUser(ctx, email, input.FirstName, input.LastName, businessID)
			if err != nil {
				return nil, "", err
			}
		} else {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
		}
	} else {
		usr = user
	}

	membership, err := s.memberships.GetMembership(ctx, usr.ID, businessID)
	if err == nil && membership != nil {
		dto, fetchErr := s.fetchBusinessUser(ctx, businessID, usr.ID)
		if fetchErr != nil {
			return nil, "", fetchErr
		}
		return dto, "", nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	if tempPassword == "" {
		tempPassword, err = s.resetUserPassword(ctx, usr.ID)
		if err != nil {
			return nil, "", err
		}
	}

	if _, err := s.memberships.CreateMembership(ctx, businessID, usr.ID, input.Role, input.Permissions, &inviterID, enums.MembershipStatusInvited); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}

	// keep the denormalized business index on the user in step
	if !usr.BusinessIDs.Contains(businessID) {
		updated := append([]uuid.UUID(usr.BusinessIDs), businessID)
		if err := s.users.UpdateBusinessIDs(ctx, usr.ID, updated); err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user businesses")
		}
	}

	dto, fetchErr := s.fetchBusinessUser(ctx, businessID, usr.ID)
	if fetchErr != nil {
		return nil, "", fetchErr
	}
	return dto, tempPassword, nil
}

func (s *service) UpdateUserPermissions(ctx context.Context, actorID, businessID, targetUserID uuid.UUID, permissions []enums.Permission) error {
	if err := s.requireRole(ctx, actorID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return err
	}

	membership, err := s.memberships.GetMembership(ctx, targetUserID, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}

	// Owners hold every permission implicitly; the flag set only applies
	// to managers and staff.
	if membership.Role == enums.MemberRoleOwner {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner permissions cannot be edited")
	}

	if err := s.memberships.UpdatePermissions(ctx, businessID, targetUserID, permissions); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update permissions")
	}
	return nil
}

func (s *service) RemoveUser(ctx context.Context, actorID, businessID, targetUserID uuid.UUID) error {
	if err := s.requireRole(ctx, actorID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return err
	}

	membership, err := s.memberships.GetMembership(ctx, targetUserID, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}

	if membership.Role == enums.MemberRoleOwner {
		count, err := s.memberships.CountMembersWithRoles(ctx, businessID, enums.MemberRoleOwner)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owners")
		}
		if count <= 1 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot remove last owner")
		}
	}

	if err := s.memberships.DeleteMembership(ctx, businessID, targetUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
	}

	return nil
}

func (s *service) CreateBranch(ctx context.Context, userID, businessID uuid.UUID, input BranchInput) (*BranchDTO, error) {
	if err := s.requireRole(ctx, userID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return nil, err
	}
	if err := validateBranchInput(input); err != nil {
		return nil, err
	}

	business, err := s.repo.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}
	if business.Type != enums.BusinessTypeRestaurant {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only restaurants have branches")
	}

	if input.IsDefault {
		if err := s.repo.ClearDefaultBranch(ctx, businessID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default branch")
		}
	}

	branch := &models.Branch{
		BusinessID: businessID,
		Name:       strings.TrimSpace(input.Name),
		Address:    strings.TrimSpace(input.Address),
		Phone:      cloneStringPtr(input.Phone),
		IsDefault:  input.IsDefault,
	}
	if err := s.repo.CreateBranch(ctx, branch); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create branch")
	}
	return BranchFromModel(branch), nil
}

func (s *service) ListBranches(ctx context.Context, userID, businessID uuid.UUID) ([]BranchDTO, error) {
	ok, err := s.memberships.UserHasRole(ctx, userID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager, enums.MemberRoleStaff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a member of this business")
	}

	rows, err := s.repo.ListBranches(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list branches")
	}

	dtos := make([]BranchDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *BranchFromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) UpdateBranch(ctx context.Context, userID, businessID, branchID uuid.UUID, input BranchInput) (*BranchDTO, error) {
	if err := s.requireRole(ctx, userID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return nil, err
	}
	if err := validateBranchInput(input); err != nil {
		return nil, err
	}

	branch, err := s.repo.FindBranch(ctx, businessID, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}

	if input.IsDefault && !branch.IsDefault {
		if err := s.repo.ClearDefaultBranch(ctx, businessID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear default branch")
		}
	}

	branch.Name = strings.TrimSpace(input.Name)
	branch.Address = strings.TrimSpace(input.Address)
	branch.Phone = cloneStringPtr(input.Phone)
	branch.IsDefault = input.IsDefault

	if err := s.repo.UpdateBranch(ctx, branch); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update branch")
	}
	return BranchFromModel(branch), nil
}

func (s *service) DeleteBranch(ctx context.Context, userID, businessID, branchID uuid.UUID) error {
	if err := s.requireRole(ctx, userID, businessID, enums.MemberRoleOwner, enums.MemberRoleManager); err != nil {
		return err
	}

	if err := s.repo.DeleteBranch(ctx, businessID, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete branch")
	}
	return nil
}

func (s *service) ListPendingApproval(ctx context.Context, params pagination.Params) ([]BusinessDTO, string, error) {
	rows, next, err := s.repo.ListByApprovalStatus(ctx, enums.ApprovalStatusPending, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending businesses")
	}

	dtos := make([]BusinessDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, next, nil
}

func (s *service) Approve(ctx context.Context, businessID uuid.UUID) (*BusinessDTO, error) {
	return s.review(ctx, businessID, enums.ApprovalStatusApproved)
}

func (s *service) Reject(ctx context.Context, businessID uuid.UUID) (*BusinessDTO, error) {
	return s.review(ctx, businessID, enums.ApprovalStatusRejected)
}

func (s *service) review(ctx context.Context, businessID uuid.UUID, status enums.ApprovalStatus) (*BusinessDTO, error) {
	business, err := s.repo.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load business")
	}
	if business.ApprovalStatus != enums.ApprovalStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "business already reviewed")
	}

	if err := s.repo.UpdateApprovalStatus(ctx, businessID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update approval status")
	}
	business.ApprovalStatus = status
	return FromModel(business), nil
}

func (s *service) requireRole(ctx context.Context, userID, businessID uuid.UUID, roles ...enums.MemberRole) error {
	ok, err := s.memberships.UserHasRole(ctx, userID, businessID, roles...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient business role")
	}
	return nil
}

func (s *service) createNewUser(ctx context.Context, email, firstName, lastName string, businessID uuid.UUID) (*models.User, string, error) {
	if !strings.Contains(email, "@") {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}

	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
		BusinessIDs:  []uuid.UUID{businessID},
	})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, tempPassword, nil
}

func (s *service) resetUserPassword(ctx context.Context, userID uuid.UUID) (string, error) {
	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user password")
	}
	return tempPassword, nil
}

func (s *service) fetchBusinessUser(ctx context.Context, businessID, userID uuid.UUID) (*memberships.BusinessUserDTO, error) {
	rows, err := s.memberships.ListBusinessUsers(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list business users")
	}
	for _, u := range rows {
		if u.UserID == userID {
			return &u, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
}

func validateBranchInput(input BranchInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "branch name is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "branch address is required")
	}
	return nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
