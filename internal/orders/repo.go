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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindSupplierLineItems(ctx context.Context, orderID, supplierBusinessID uuid.UUID) ([]models.OrderLineItem, error) {
	var items []models.OrderLineItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND supplier_business_id = ?", orderID, supplierBusinessID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListRestaurantOrders(ctx context.Context, restaurantBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("orders.restaurant_business_id = ?", restaurantBusinessID)
	return r.listOrders(ctx, query, params, filters, false)
}

func (r *repository) ListSupplierOrders(ctx context.Context, supplierBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("EXISTS (SELECT 1 FROM order_line_items oli WHERE oli.order_id = orders.id AND oli.supplier_business_id = ?)", supplierBusinessID)
	return r.listOrders(ctx, query, params, filters, true)
}

func (r *repository) ListAllOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	return r.listOrders(ctx, query, params, filters, true)
}

func (r *repository) listOrders(ctx context.Context, query *gorm.DB, params pagination.Params, filters OrderFilters, includeRestaurant bool) (*OrderList, error) {
	if filters.Status != nil {
		query = query.Where("orders.status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("orders.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("orders.created_at <= ?", *filters.DateTo)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(orders.created_at, orders.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Order
	err = query.
		Preload("LineItems").
		Order("orders.created_at DESC, orders.id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	restaurants, err := r.restaurantSummaries(ctx, rows, includeRestaurant)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		summary := OrderSummary{
			ID:                row.ID,
			OrderNumber:       row.OrderNumber,
			CreatedAt:         row.CreatedAt,
			Status:            row.Status,
			FulfillmentMethod: row.FulfillmentMethod,
			Subtotal:          row.Subtotal,
			DeliveryFee:       row.DeliveryFee,
			Total:             row.Total,
			TotalItems:        len(row.LineItems),
		}
		if s, ok := restaurants[row.RestaurantBusinessID]; ok {
			summary.Restaurant = &s
		}
		list.Orders = append(list.Orders, summary)
	}
	return list, nil
}

func (r *repository) restaurantSummaries(ctx context.Context, rows []models.Order, include bool) (map[uuid.UUID]BusinessSummary, error) {
	if !include || len(rows) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.RestaurantBusinessID]; ok {
			continue
		}
		seen[row.RestaurantBusinessID] = struct{}{}
		ids = append(ids, row.RestaurantBusinessID)
	}

	var businesses []models.Business
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&businesses).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]BusinessSummary, len(businesses))
	for _, b := range businesses {
		out[b.ID] = BusinessSummary{ID: b.ID, CompanyName: b.CompanyName, TradingName: b.TradingName, LogoURL: b.LogoURL}
	}
	return out, nil
}

func (r *repository) UpdateLineItemStatuses(ctx context.Context, lineItemIDs []uuid.UUID, status enums.LineItemStatus) error {
	if len(lineItemIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.OrderLineItem{}).
		Where("id IN ?", lineItemIDs).
		Update("status", status).Error
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, source string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"status": status, "status_source": source}).Error
}

// FindDeliveryOrders returns raw delivery orders with their line items
// preloaded so callers can drop the ones with nothing to deliver.
func (r *repository) FindDeliveryOrders(ctx context.Context, params pagination.Params, filters OrderFilters) ([]models.Order, string, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("orders.fulfillment_method = ?", enums.FulfillmentMethodDelivery)
	if filters.Status != nil {
		query = query.Where("orders.status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("orders.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("orders.created_at <= ?", *filters.DateTo)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(orders.created_at, orders.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Order
	err = query.
		Preload("LineItems").
		Order("orders.created_at DESC, orders.id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

func (r *repository) FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
