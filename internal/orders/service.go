package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/internal/settlement"
	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
	"github.com/dmcastellanos/supplyline-backend/pkg/pricing"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ProductReader loads purchasable products with their price tiers.
type ProductReader interface {
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// PaymentReader loads payment notifications for an order.
type PaymentReader interface {
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentNotification, error)
}

// BusinessReader loads business records for settlement group enrichment.
type BusinessReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Business, error)
}

// Service defines order operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDetail, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	GetForSupplier(ctx context.Context, orderID, supplierBusinessID uuid.UUID) (*SupplierOrderView, error)
	ListForRestaurant(ctx context.Context, restaurantBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListForSupplier(ctx context.Context, supplierBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	BulkUpdateLineItems(ctx context.Context, input BulkLineItemUpdateInput) (*SupplierOrderView, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	products   ProductReader
	payments   PaymentReader
	businesses BusinessReader
	logg       *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, products ProductReader, payments PaymentReader, businesses BusinessReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment reader required")
	}
	if businesses == nil {
		return nil, fmt.Errorf("business reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, products: products, payments: payments, businesses: businesses, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDetail, error) {
	if input.RestaurantBusinessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business context missing")
	}
	if input.PlacedByUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if !input.FulfillmentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown fulfillment method")
	}
	if input.FulfillmentMethod == enums.FulfillmentMethodDelivery &&
		input.BranchID == nil && (input.DeliveryAddress == nil || strings.TrimSpace(*input.DeliveryAddress) == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery orders require a branch or address")
	}

	quantities := make(map[uuid.UUID]int, len(input.Items))
	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if _, ok := quantities[item.ProductID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order items")
		}
		quantities[item.ProductID] = item.Quantity
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.FindActiveByIDs(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(products) != len(productIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more products are unavailable")
	}

	lineItems := make([]models.OrderLineItem, 0, len(products))
	for _, p := range products {
		qty := quantities[p.ID]
		if qty < p.MinOrderQty {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s requires a minimum quantity of %d", p.Name, p.MinOrderQty))
		}
		lineItems = append(lineItems, models.OrderLineItem{
			ProductID:          p.ID,
			SupplierBusinessID: p.SupplierBusinessID,
			Name:               p.Name,
			Unit:               p.Unit,
			Quantity:           qty,
			UnitPrice:          pricing.ResolveUnitPrice(p.BasePrice, p.PriceTiers, qty),
			BaseUnitPrice:      p.BasePrice,
			DeliveryFee:        p.DeliveryFee,
			Status:             enums.LineItemStatusPending,
		})
	}

	totals := settlement.BuildOrderTotals(lineItems)
	order := &models.Order{
		OrderNumber:          newOrderNumber(),
		RestaurantBusinessID: input.RestaurantBusinessID,
		PlacedByUserID:       input.PlacedByUserID,
		BranchID:             input.BranchID,
		FulfillmentMethod:    input.FulfillmentMethod,
		DeliveryAddress:      input.DeliveryAddress,
		DeliveryNotes:        input.DeliveryNotes,
		RequestedDeliveryAt:  input.RequestedDeliveryAt,
		Subtotal:             totals.Subtotal,
		DeliveryFee:          totals.DeliveryFee,
		Total:                totals.Total,
		Status:               enums.OrderStatusPending,
		LineItems:            lineItems,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).CreateOrder(ctx, order)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	return s.buildDetail(ctx, order)
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, order)
}

func (s *service) GetForSupplier(ctx context.Context, orderID, supplierBusinessID uuid.UUID) (*SupplierOrderView, error) {
	order, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.buildSupplierView(ctx, order, supplierBusinessID)
}

func (s *service) ListForRestaurant(ctx context.Context, restaurantBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	list, err := s.repo.ListRestaurantOrders(ctx, restaurantBusinessID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurant orders")
	}
	return list, nil
}

func (s *service) ListForSupplier(ctx context.Context, supplierBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	list, err := s.repo.ListSupplierOrders(ctx, supplierBusinessID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier orders")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	list, err := s.repo.ListAllOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// BulkUpdateLineItems moves a supplier's line items to the target status and
// mirrors the action onto the order's advisory status.
func (s *service) BulkUpdateLineItems(ctx context.Context, input BulkLineItemUpdateInput) (*SupplierOrderView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.SupplierBusinessID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business context missing")
	}
	if len(input.LineItemIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item required")
	}
	if !input.TargetStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown line item status")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		owned, err := repo.FindSupplierLineItems(ctx, input.OrderID, input.SupplierBusinessID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier line items")
		}
		byID := make(map[uuid.UUID]*models.OrderLineItem, len(owned))
		for i := range owned {
			byID[owned[i].ID] = &owned[i]
		}

		for _, id := range input.LineItemIDs {
			item, ok := byID[id]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeForbidden, "line item does not belong to supplier")
			}
			if item.Status == input.TargetStatus {
				continue
			}
			if !item.Status.CanTransition(input.TargetStatus) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("line item cannot move from %s to %s", item.Status, input.TargetStatus))
			}
		}

		if err := repo.UpdateLineItemStatuses(ctx, input.LineItemIDs, input.TargetStatus); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line items")
		}

		// Order status is advisory: it mirrors the latest supplier action
		// rather than aggregating across suppliers.
		advisory := enums.OrderStatus(input.TargetStatus)
		if err := repo.UpdateOrderStatus(ctx, loaded.ID, advisory, enums.OrderStatusSourceSupplierAction); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		loaded, err = repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.buildSupplierView(ctx, order, input.SupplierBusinessID)
}

func (s *service) findOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) buildDetail(ctx context.Context, order *models.Order) (*OrderDetail, error) {
	groups, err := s.buildGroups(ctx, order)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: *order, Groups: groups}, nil
}

func (s *service) buildSupplierView(ctx context.Context, order *models.Order, supplierBusinessID uuid.UUID) (*SupplierOrderView, error) {
	groups, err := s.buildGroups(ctx, order)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.SupplierBusinessID == supplierBusinessID {
			return &SupplierOrderView{Order: *order, Group: g}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order has no items from supplier")
}

func (s *service) buildGroups(ctx context.Context, order *models.Order) ([]settlement.Group, error) {
	groups := settlement.GroupBySupplier(order.LineItems)
	if len(groups) == 0 {
		return groups, nil
	}

	// Payment status is best-effort: a broken payment lookup must not hide
	// the order itself, so failed fetches render every group as unpaid.
	notifications, err := s.payments.FindByOrder(ctx, order.ID)
	if err != nil {
		s.logg.Error(ctx, "payment notification lookup failed; rendering groups unpaid", err)
		notifications = nil
	}
	groups = settlement.MergePaymentStatus(groups, order.ID, notifications)

	supplierIDs := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		supplierIDs = append(supplierIDs, g.SupplierBusinessID)
	}
	suppliers, err := s.businesses.FindByIDs(ctx, supplierIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier profiles")
	}
	return settlement.AttachSupplierProfiles(groups, suppliers), nil
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("SO-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
