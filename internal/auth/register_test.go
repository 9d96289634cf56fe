package auth

import (
	"context"
	"testing"

	"github.com/dmcastellanos/supplyline-backend/pkg/config"
	"github.com/dmcastellanos/supplyline-backend/pkg/db"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
)

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		FirstName:    "Nadia",
		LastName:     "Haddad",
		Email:        "owner@example.com",
		Password:     "long-enough-password",
		CompanyName:  "Golden Fork Trading",
		BusinessType: enums.BusinessTypeRestaurant,
		AcceptTOS:    true,
	}
}

func newRegisterServiceForValidation(t *testing.T) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		DB: &db.Client{},
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new register service: %v", err)
	}
	return svc
}

func TestNewRegisterServiceRequiresDB(t *testing.T) {
	if _, err := NewRegisterService(RegisterServiceParams{}); err == nil {
		t.Fatal("expected error without db client")
	}
}

func TestRegisterRejectsMissingEmail(t *testing.T) {
	svc := newRegisterServiceForValidation(t)
	req := validRegisterRequest()
	req.Email = "   "

	err := svc.Register(context.Background(), req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsInvalidBusinessType(t *testing.T) {
	svc := newRegisterServiceForValidation(t)
	req := validRegisterRequest()
	req.BusinessType = "warehouse"

	err := svc.Register(context.Background(), req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRejectsBlankCompanyName(t *testing.T) {
	svc := newRegisterServiceForValidation(t)
	req := validRegisterRequest()
	req.CompanyName = "  "

	err := svc.Register(context.Background(), req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterRequiresTOSAcceptance(t *testing.T) {
	svc := newRegisterServiceForValidation(t)
	req := validRegisterRequest()
	req.AcceptTOS = false

	err := svc.Register(context.Background(), req)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
