package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error)
	FindSupplierLineItems(ctx context.Context, orderID, supplierBusinessID uuid.UUID) ([]models.OrderLineItem, error)
	ListRestaurantOrders(ctx context.Context, restaurantBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListSupplierOrders(ctx context.Context, supplierBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListAllOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	UpdateLineItemStatuses(ctx context.Context, lineItemIDs []uuid.UUID, status enums.LineItemStatus) error
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, source string) error
	FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	FindDeliveryOrders(ctx context.Context, params pagination.Params, filters OrderFilters) ([]models.Order, string, error)
}
