package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	order         *models.Order
	created       *models.Order
	updatedStatus enums.OrderStatus
	updatedSource string
	updatedItems  []uuid.UUID
	itemStatus    enums.LineItemStatus
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.LineItems {
		if order.LineItems[i].ID == uuid.Nil {
			order.LineItems[i].ID = uuid.New()
		}
		order.LineItems[i].OrderID = order.ID
	}
	s.created = order
	s.order = order
	return order, nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrdersRepo) FindLineItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderLineItem, error) {
	if s.order == nil {
		return nil, nil
	}
	return s.order.LineItems, nil
}

func (s *stubOrdersRepo) FindSupplierLineItems(ctx context.Context, orderID, supplierBusinessID uuid.UUID) ([]models.OrderLineItem, error) {
	var out []models.OrderLineItem
	if s.order == nil {
		return out, nil
	}
	for _, item := range s.order.LineItems {
		if item.SupplierBusinessID == supplierBusinessID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) ListRestaurantOrders(ctx context.Context, restaurantBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (s *stubOrdersRepo) ListSupplierOrders(ctx context.Context, supplierBusinessID uuid.UUID, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (s *stubOrdersRepo) ListAllOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (s *stubOrdersRepo) UpdateLineItemStatuses(ctx context.Context, lineItemIDs []uuid.UUID, status enums.LineItemStatus) error {
	s.updatedItems = lineItemIDs
	s.itemStatus = status
	ids := make(map[uuid.UUID]struct{}, len(lineItemIDs))
	for _, id := range lineItemIDs {
		ids[id] = struct{}{}
	}
	for i := range s.order.LineItems {
		if _, ok := ids[s.order.LineItems[i].ID]; ok {
			s.order.LineItems[i].Status = status
		}
	}
	return nil
}

func (s *stubOrdersRepo) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, source string) error {
	s.updatedStatus = status
	s.updatedSource = source
	s.order.Status = status
	s.order.StatusSource = &source
	return nil
}

func (s *stubOrdersRepo) FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) FindDeliveryOrders(ctx context.Context, params pagination.Params, filters OrderFilters) ([]models.Order, string, error) {
	if s.order == nil {
		return nil, "", nil
	}
	return []models.Order{*s.order}, "", nil
}

type stubProductReader struct {
	products []models.Product
}

func (s *stubProductReader) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	byID := make(map[uuid.UUID]models.Product, len(s.products))
	for _, p := range s.products {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubPaymentReader struct {
	notifications []models.PaymentNotification
	err           error
}

func (s *stubPaymentReader) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentNotification, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.notifications, nil
}

type stubBusinessReader struct {
	businesses []models.Business
}

func (s *stubBusinessReader) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Business, error) {
	return s.businesses, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(repo *stubOrdersRepo, products *stubProductReader, payments *stubPaymentReader, businesses *stubBusinessReader) Service {
	if products == nil {
		products = &stubProductReader{}
	}
	if payments == nil {
		payments = &stubPaymentReader{}
	}
	if businesses == nil {
		businesses = &stubBusinessReader{}
	}
	svc, err := NewService(repo, stubTxRunner{}, products, payments, businesses, logger.New(logger.Options{ServiceName: "orders-test"}))
	if err != nil {
		panic(err)
	}
	return svc
}

func TestCreateSnapshotsTieredPricingAndTotals(t *testing.T) {
	restaurantID := uuid.New()
	s1, s2 := uuid.New(), uuid.New()
	p1 := models.Product{
		ID:                 uuid.New(),
		SupplierBusinessID: s1,
		Name:               "Flour 10kg",
		Unit:               "bag",
		BasePrice:          dec("10"),
		DeliveryFee:        dec("15"),
		MinOrderQty:        1,
		PriceTiers: []models.PriceTier{
			{MinQty: 50, UnitPrice: dec("8")},
			{MinQty: 10, UnitPrice: dec("9")},
		},
	}
	p2 := models.Product{
		ID:                 uuid.New(),
		SupplierBusinessID: s1,
		Name:               "Yeast",
		Unit:               "pack",
		BasePrice:          dec("5"),
		DeliveryFee:        dec("15"),
		MinOrderQty:        1,
	}
	p3 := models.Product{
		ID:                 uuid.New(),
		SupplierBusinessID: s2,
		Name:               "Olive oil 5l",
		Unit:               "tin",
		BasePrice:          dec("20"),
		DeliveryFee:        dec("25"),
		MinOrderQty:        1,
	}

	repo := &stubOrdersRepo{}
	svc := newTestService(repo, &stubProductReader{products: []models.Product{p1, p2, p3}}, nil, nil)

	addr := "12 Harbour Rd"
	detail, err := svc.Create(context.Background(), CreateOrderInput{
		RestaurantBusinessID: restaurantID,
		PlacedByUserID:       uuid.New(),
		FulfillmentMethod:    enums.FulfillmentMethodDelivery,
		DeliveryAddress:      &addr,
		Items: []CreateOrderItemInput{
			{ProductID: p1.ID, Quantity: 60},
			{ProductID: p2.ID, Quantity: 1},
			{ProductID: p3.ID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}

	order := detail.Order
	if !order.Subtotal.Equal(dec("525")) {
		t.Fatalf("expected subtotal 525 got %s", order.Subtotal)
	}
	if !order.DeliveryFee.Equal(dec("40")) {
		t.Fatalf("expected delivery fee 40 got %s", order.DeliveryFee)
	}
	if !order.Total.Equal(dec("565")) {
		t.Fatalf("expected total 565 got %s", order.Total)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status got %s", order.Status)
	}
	if len(detail.Groups) != 2 {
		t.Fatalf("expected 2 supplier groups got %d", len(detail.Groups))
	}
	if !detail.Groups[0].ItemsTotal.Equal(dec("485")) || len(detail.Groups[0].Items) != 2 {
		t.Fatalf("unexpected first group: total %s items %d", detail.Groups[0].ItemsTotal, len(detail.Groups[0].Items))
	}

	// Tiered unit price must be snapshotted on the item, not recomputed later.
	var flour *models.OrderLineItem
	for i := range repo.created.LineItems {
		if repo.created.LineItems[i].ProductID == p1.ID {
			flour = &repo.created.LineItems[i]
		}
	}
	if flour == nil {
		t.Fatal("flour line item missing")
	}
	if !flour.UnitPrice.Equal(dec("8")) {
		t.Fatalf("expected tiered unit price 8 got %s", flour.UnitPrice)
	}
	if !flour.BaseUnitPrice.Equal(dec("10")) {
		t.Fatalf("expected base price 10 got %s", flour.BaseUnitPrice)
	}
}

func TestCreateRejectsEmptyAndInvalidInput(t *testing.T) {
	svc := newTestService(&stubOrdersRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		RestaurantBusinessID: uuid.New(),
		PlacedByUserID:       uuid.New(),
		FulfillmentMethod:    enums.FulfillmentMethodPickup,
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), CreateOrderInput{
		RestaurantBusinessID: uuid.New(),
		PlacedByUserID:       uuid.New(),
		FulfillmentMethod:    enums.FulfillmentMethodDelivery,
		Items:                []CreateOrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsUnavailableProduct(t *testing.T) {
	svc := newTestService(&stubOrdersRepo{}, &stubProductReader{}, nil, nil)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		RestaurantBusinessID: uuid.New(),
		PlacedByUserID:       uuid.New(),
		FulfillmentMethod:    enums.FulfillmentMethodPickup,
		Items:                []CreateOrderItemInput{{ProductID: uuid.New(), Quantity: 3}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateEnforcesMinimumOrderQuantity(t *testing.T) {
	p := models.Product{
		ID:                 uuid.New(),
		SupplierBusinessID: uuid.New(),
		Name:               "Basmati rice 25kg",
		Unit:               "sack",
		BasePrice:          dec("30"),
		MinOrderQty:        5,
	}
	svc := newTestService(&stubOrdersRepo{}, &stubProductReader{products: []models.Product{p}}, nil, nil)

	_, err := svc.Create(context.Background(), CreateOrderInput{
		RestaurantBusinessID: uuid.New(),
		PlacedByUserID:       uuid.New(),
		FulfillmentMethod:    enums.FulfillmentMethodPickup,
		Items:                []CreateOrderItemInput{{ProductID: p.ID, Quantity: 2}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestBulkUpdateMirrorsAdvisoryOrderStatus(t *testing.T) {
	supplierID := uuid.New()
	orderID := uuid.New()
	items := []models.OrderLineItem{
		{ID: uuid.New(), OrderID: orderID, SupplierBusinessID: supplierID, Quantity: 1, UnitPrice: dec("10"), Status: enums.LineItemStatusPending},
		{ID: uuid.New(), OrderID: orderID, SupplierBusinessID: supplierID, Quantity: 2, UnitPrice: dec("4"), Status: enums.LineItemStatusPending},
	}
	repo := &stubOrdersRepo{order: &models.Order{
		ID:                   orderID,
		RestaurantBusinessID: uuid.New(),
		Status:               enums.OrderStatusPending,
		LineItems:            items,
	}}
	svc := newTestService(repo, nil, nil, nil)

	view, err := svc.BulkUpdateLineItems(context.Background(), BulkLineItemUpdateInput{
		OrderID:            orderID,
		SupplierBusinessID: supplierID,
		ActorUserID:        uuid.New(),
		LineItemIDs:        []uuid.UUID{items[0].ID, items[1].ID},
		TargetStatus:       enums.LineItemStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if repo.itemStatus != enums.LineItemStatusConfirmed {
		t.Fatalf("expected confirmed items got %s", repo.itemStatus)
	}
	if repo.updatedStatus != enums.OrderStatusConfirmed {
		t.Fatalf("expected advisory status confirmed got %s", repo.updatedStatus)
	}
	if repo.updatedSource != enums.OrderStatusSourceSupplierAction {
		t.Fatalf("unexpected status source %s", repo.updatedSource)
	}
	if view.Order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected view status confirmed got %s", view.Order.Status)
	}
}

func TestBulkUpdateRejectsForeignLineItems(t *testing.T) {
	supplierID := uuid.New()
	orderID := uuid.New()
	foreign := models.OrderLineItem{ID: uuid.New(), OrderID: orderID, SupplierBusinessID: uuid.New(), Quantity: 1, UnitPrice: dec("10")}
	repo := &stubOrdersRepo{order: &models.Order{ID: orderID, LineItems: []models.OrderLineItem{foreign}}}
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.BulkUpdateLineItems(context.Background(), BulkLineItemUpdateInput{
		OrderID:            orderID,
		SupplierBusinessID: supplierID,
		ActorUserID:        uuid.New(),
		LineItemIDs:        []uuid.UUID{foreign.ID},
		TargetStatus:       enums.LineItemStatusConfirmed,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestBulkUpdateRejectsBackwardTransition(t *testing.T) {
	supplierID := uuid.New()
	orderID := uuid.New()
	delivered := models.OrderLineItem{
		ID: uuid.New(), OrderID: orderID, SupplierBusinessID: supplierID,
		Quantity: 1, UnitPrice: dec("10"), Status: enums.LineItemStatusDelivered,
	}
	repo := &stubOrdersRepo{order: &models.Order{ID: orderID, LineItems: []models.OrderLineItem{delivered}}}
	svc := newTestService(repo, nil, nil, nil)

	_, err := svc.BulkUpdateLineItems(context.Background(), BulkLineItemUpdateInput{
		OrderID:            orderID,
		SupplierBusinessID: supplierID,
		ActorUserID:        uuid.New(),
		LineItemIDs:        []uuid.UUID{delivered.ID},
		TargetStatus:       enums.LineItemStatusPreparing,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestGetMergesPaymentsAndProfiles(t *testing.T) {
	supplierID := uuid.New()
	orderID := uuid.New()
	repo := &stubOrdersRepo{order: &models.Order{
		ID: orderID,
		LineItems: []models.OrderLineItem{
			{ID: uuid.New(), OrderID: orderID, SupplierBusinessID: supplierID, Quantity: 1, UnitPrice: dec("10")},
		},
	}}
	payments := &stubPaymentReader{notifications: []models.PaymentNotification{
		{OrderID: &orderID, SupplierBusinessID: supplierID, IsPaid: true},
	}}
	businesses := &stubBusinessReader{businesses: []models.Business{
		{ID: supplierID, CompanyName: "Cape Produce Co"},
	}}
	svc := newTestService(repo, nil, payments, businesses)

	detail, err := svc.Get(context.Background(), orderID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(detail.Groups) != 1 {
		t.Fatalf("expected one group got %d", len(detail.Groups))
	}
	if !detail.Groups[0].IsPaid {
		t.Fatal("expected paid group")
	}
	if detail.Groups[0].SupplierName != "Cape Produce Co" {
		t.Fatalf("unexpected supplier name %q", detail.Groups[0].SupplierName)
	}
}

func TestGetShowsUnpaidGroupsWhenPaymentLookupFails(t *testing.T) {
	supplierID := uuid.New()
	orderID := uuid.New()
	repo := &stubOrdersRepo{order: &models.Order{
		ID: orderID,
		LineItems: []models.OrderLineItem{
			{ID: uuid.New(), OrderID: orderID, SupplierBusinessID: supplierID, Quantity: 2, UnitPrice: dec("7")},
		},
	}}
	payments := &stubPaymentReader{err: errors.New("redis: connection refused")}
	svc := newTestService(repo, nil, payments, nil)

	detail, err := svc.Get(context.Background(), orderID)
	if err != nil {
		t.Fatalf("payment outage must not block the order: %v", err)
	}
	if len(detail.Groups) != 1 {
		t.Fatalf("expected one group got %d", len(detail.Groups))
	}
	if detail.Groups[0].IsPaid {
		t.Fatal("expected group to render unpaid")
	}
	if detail.Groups[0].ReceiptURL != nil {
		t.Fatal("expected no receipt url")
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s got %s", code, appErr.Code())
	}
}
