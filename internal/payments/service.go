package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

// NotifyInput carries a restaurant's payment claim for one supplier slice
// of an order.
type NotifyInput struct {
	OrderID              uuid.UUID
	SupplierBusinessID   uuid.UUID
	RestaurantBusinessID uuid.UUID
	ReportedByUserID     uuid.UUID
	Reference            *string
	ReceiptURL           *string
	Note                 *string
}

// NotificationList wraps a page of notifications plus the next cursor.
type NotificationList struct {
	Notifications []models.PaymentNotification `json:"notifications"`
	NextCursor    string                       `json:"next_cursor,omitempty"`
}

// OrderReader loads orders with line items for ownership checks.
type OrderReader interface {
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes payment notification operations.
type Service interface {
	Notify(ctx context.Context, input NotifyInput) (*models.PaymentNotification, error)
	Confirm(ctx context.Context, supplierBusinessID, notificationID uuid.UUID) (*models.PaymentNotification, error)
	ListForSupplier(ctx context.Context, supplierBusinessID uuid.UUID, params pagination.Params) (*NotificationList, error)
	ListForRestaurant(ctx context.Context, restaurantBusinessID uuid.UUID, params pagination.Params) (*NotificationList, error)
	ListAll(ctx context.Context, params pagination.Params) (*NotificationList, error)
}

type service struct {
	repo   *Repository
	tx     txRunner
	orders OrderReader
}

// NewService constructs a payments service instance.
func NewService(repo *Repository, tx txRunner, orders OrderReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	return &service{repo: repo, tx: tx, orders: orders}, nil
}

// Notify upserts the notification for the (order, supplier) pair. Repeated
// reports update the existing row instead of stacking duplicates.
func (s *service) Notify(ctx context.Context, input NotifyInput) (*models.PaymentNotification, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.SupplierBusinessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.RestaurantBusinessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business context missing")
	}
	if input.ReportedByUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.orders.FindOrder(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.RestaurantBusinessID != input.RestaurantBusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to restaurant")
	}
	if !orderHasSupplier(order, input.SupplierBusinessID) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items from supplier")
	}

	var result *models.PaymentNotification
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByOrderAndSupplier(ctx, input.OrderID, input.SupplierBusinessID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if existing != nil {
			updates := map[string]any{
				"is_paid":             true,
				"reported_by_user_id": input.ReportedByUserID,
			}
			if input.Reference != nil {
				updates["reference"] = *input.Reference
			}
			if input.ReceiptURL != nil {
				updates["receipt_url"] = *input.ReceiptURL
			}
			if input.Note != nil {
				updates["note"] = *input.Note
			}
			if err := repo.Update(ctx, existing.ID, updates); err != nil {
				return err
			}
			result, err = repo.FindByOrderAndSupplier(ctx, input.OrderID, input.SupplierBusinessID)
			return err
		}

		orderID := input.OrderID
		result, err = repo.Create(ctx, &models.PaymentNotification{
			OrderID:              &orderID,
			SupplierBusinessID:   input.SupplierBusinessID,
			RestaurantBusinessID: input.RestaurantBusinessID,
			ReportedByUserID:     input.ReportedByUserID,
			IsPaid:               true,
			Reference:            input.Reference,
			ReceiptURL:           input.ReceiptURL,
			Note:                 input.Note,
		})
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment notification")
	}
	return result, nil
}

// Confirm records the supplier's acknowledgement of a reported payment.
func (s *service) Confirm(ctx context.Context, supplierBusinessID, notificationID uuid.UUID) (*models.PaymentNotification, error) {
	if supplierBusinessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business context missing")
	}
	if notificationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	row, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment notification")
	}
	if row.SupplierBusinessID != supplierBusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "notification does not belong to supplier")
	}
	if row.ConfirmedAt != nil {
		return row, nil
	}

	now := time.Now().UTC()
	if err := s.repo.Update(ctx, row.ID, map[string]any{"confirmed_at": now}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment notification")
	}
	row.ConfirmedAt = &now
	return row, nil
}

func (s *service) ListForSupplier(ctx context.Context, supplierBusinessID uuid.UUID, params pagination.Params) (*NotificationList, error) {
	rows, next, err := s.repo.ListForSupplier(ctx, supplierBusinessID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier payments")
	}
	return &NotificationList{Notifications: rows, NextCursor: next}, nil
}

func (s *service) ListForRestaurant(ctx context.Context, restaurantBusinessID uuid.UUID, params pagination.Params) (*NotificationList, error) {
	rows, next, err := s.repo.ListForRestaurant(ctx, restaurantBusinessID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurant payments")
	}
	return &NotificationList{Notifications: rows, NextCursor: next}, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*NotificationList, error) {
	rows, next, err := s.repo.ListAll(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return &NotificationList{Notifications: rows, NextCursor: next}, nil
}

func orderHasSupplier(order *models.Order, supplierBusinessID uuid.UUID) bool {
	for _, item := range order.LineItems {
		if item.SupplierBusinessID == supplierBusinessID {
			return true
		}
	}
	return false
}
