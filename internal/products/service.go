package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db"
	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	pkgerrors "github.com/dmcastellanos/supplyline-backend/pkg/errors"
)

// Service exposes supplier catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, userID, supplierBusinessID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, userID, supplierBusinessID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	ReplaceTiers(ctx context.Context, userID, supplierBusinessID, productID uuid.UUID, tiers []PriceTierInput) (*ProductDTO, error)
	DeactivateProduct(ctx context.Context, userID, supplierBusinessID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
}

type businessLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
}

type membershipChecker interface {
	UserHasPermission(ctx context.Context, userID, businessID uuid.UUID, permission enums.Permission) (bool, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	businesses  businessLoader
	memberships membershipChecker
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client, businesses businessLoader, memberships membershipChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if businesses == nil {
		return nil, fmt.Errorf("business repository required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership checker required")
	}
	return &service{repo: repo, dbClient: dbClient, businesses: businesses, memberships: memberships}, nil
}

// CreateProduct creates the product with its initial tier set.
func (s *service) CreateProduct(ctx context.Context, userID, supplierBusinessID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if err := s.ensureSupplier(ctx, supplierBusinessID); err != nil {
		return nil, err
	}
	if err := s.ensurePermission(ctx, userID, supplierBusinessID); err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	if err := validateTiers(input.PriceTiers); err != nil {
		return nil, err
	}

	product := &models.Product{
		SupplierBusinessID: supplierBusinessID,
		CategoryID:         input.CategoryID,
		Name:               strings.TrimSpace(input.Name),
		Description:        input.Description,
		Unit:               input.Unit,
		BasePrice:          input.BasePrice,
		DeliveryFee:        input.DeliveryFee,
		MinOrderQty:        input.MinOrderQty,
		IsActive:           input.IsActive,
		ImageURL:           input.ImageURL,
		PriceTiers:         buildTierRows(supplierBusinessID, input.PriceTiers),
	}
	if product.MinOrderQty <= 0 {
		product.MinOrderQty = 1
	}
	if product.Unit == "" {
		product.Unit = "unit"
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).CreateProduct(ctx, product)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct applies partial updates to a catalog product.
func (s *service) UpdateProduct(ctx context.Context, userID, supplierBusinessID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.ownedProduct(ctx, userID, supplierBusinessID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.Unit != nil {
		if strings.TrimSpace(*input.Unit) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cannot be empty")
		}
		updates["unit"] = *input.Unit
	}
	if input.BasePrice != nil {
		if input.BasePrice.LessThanOrEqual(decimal.Zero) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
		}
		updates["base_price"] = *input.BasePrice
	}
	if input.DeliveryFee != nil {
		if input.DeliveryFee.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
		}
		updates["delivery_fee"] = *input.DeliveryFee
	}
	if input.MinOrderQty != nil {
		if *input.MinOrderQty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum order quantity must be positive")
		}
		updates["min_order_qty"] = *input.MinOrderQty
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}

	if err := s.repo.UpdateProduct(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return s.GetProduct(ctx, product.ID)
}

// ReplaceTiers swaps the product's entire tier set atomically. Partial tier
// edits are not supported: clients always submit the full new set.
func (s *service) ReplaceTiers(ctx context.Context, userID, supplierBusinessID, productID uuid.UUID, tiers []PriceTierInput) (*ProductDTO, error) {
	product, err := s.ownedProduct(ctx, userID, supplierBusinessID, productID)
	if err != nil {
		return nil, err
	}
	if err := validateTiers(tiers); err != nil {
		return nil, err
	}

	rows := buildTierRows(supplierBusinessID, tiers)
	for i := range rows {
		rows[i].ProductID = product.ID
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceTiers(ctx, product.ID, rows)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace price tiers")
	}
	return s.GetProduct(ctx, product.ID)
}

// DeactivateProduct hides the product from the catalog.
func (s *service) DeactivateProduct(ctx context.Context, userID, supplierBusinessID, productID uuid.UUID) error {
	product, err := s.ownedProduct(ctx, userID, supplierBusinessID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateProduct(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate product")
	}
	return nil
}

// GetProduct loads a single product with its supplier summary.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	supplier, err := s.businesses.FindByID(ctx, product.SupplierBusinessID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load supplier")
	}
	return NewProductDTO(product, supplier), nil
}

// ListProducts pages through the catalog.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, next, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	suppliers, err := s.repo.FindSuppliers(ctx, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load suppliers")
	}

	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		var supplier *models.Business
		if b, ok := suppliers[rows[i].SupplierBusinessID]; ok {
			supplier = &b
		}
		result.Products = append(result.Products, *NewProductDTO(&rows[i], supplier))
	}
	return result, nil
}

func (s *service) ownedProduct(ctx context.Context, userID, supplierBusinessID, productID uuid.UUID) (*models.Product, error) {
	if err := s.ensurePermission(ctx, userID, supplierBusinessID); err != nil {
		return nil, err
	}
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if product.SupplierBusinessID != supplierBusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to supplier")
	}
	return product, nil
}

func (s *service) ensureSupplier(ctx context.Context, businessID uuid.UUID) error {
	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load business")
	}
	if business.Type != enums.BusinessTypeSupplier {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only suppliers can manage products")
	}
	if business.ApprovalStatus != enums.ApprovalStatusApproved {
		return pkgerrors.New(pkgerrors.CodeForbidden, "business is not approved")
	}
	return nil
}

func (s *service) ensurePermission(ctx context.Context, userID, businessID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if businessID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "business context missing")
	}
	ok, err := s.memberships.UserHasPermission(ctx, userID, businessID, enums.PermissionManageProducts)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "missing manage_products permission")
	}
	return nil
}

func validateProductInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.BasePrice.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price must be positive")
	}
	if input.DeliveryFee.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
	}
	if input.MinOrderQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum order quantity cannot be negative")
	}
	return nil
}

func validateTiers(tiers []PriceTierInput) error {
	seen := make(map[int]struct{}, len(tiers))
	for _, tier := range tiers {
		if tier.MinQty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier min quantity must be positive")
		}
		if tier.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier unit price must be positive")
		}
		if _, ok := seen[tier.MinQty]; ok {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate tier for min quantity %d", tier.MinQty))
		}
		seen[tier.MinQty] = struct{}{}
	}
	return nil
}

func buildTierRows(supplierBusinessID uuid.UUID, tiers []PriceTierInput) []models.PriceTier {
	rows := make([]models.PriceTier, 0, len(tiers))
	for _, tier := range tiers {
		rows = append(rows, models.PriceTier{
			SupplierBusinessID: supplierBusinessID,
			MinQty:             tier.MinQty,
			UnitPrice:          tier.UnitPrice,
		})
	}
	return rows
}
