package product

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmcastellanos/supplyline-backend/pkg/db/models"
	"github.com/dmcastellanos/supplyline-backend/pkg/pagination"
)

// Repository handles persistence for products and their price tiers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a product repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateProduct inserts the product together with any nested price tiers.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindProduct loads a product with its tiers ordered by min quantity.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_qty ASC")
		}).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByIDs loads active products with tiers for order placement.
func (r *Repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("PriceTiers").
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// UpdateProduct applies the field updates to a product row.
func (r *Repository) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(updates).Error
}

// ReplaceTiers swaps the product's full tier set in one statement pair. The
// caller is expected to run this inside a transaction.
func (r *Repository) ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []models.PriceTier) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.PriceTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	return tx.Create(&tiers).Error
}

// DeactivateProduct hides the product from the catalog without losing the
// rows historical orders reference.
func (r *Repository) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", productID).
		Update("is_active", false).Error
}

// ListProducts pages through the catalog with the given filters.
func (r *Repository) ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, string, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if !input.IncludeHidden {
		query = query.Where("products.is_active = ?", true)
	}

	f := input.Filters
	if f.CategoryID != nil {
		query = query.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.SupplierID != nil {
		query = query.Where("products.supplier_business_id = ?", *f.SupplierID)
	}
	if f.PriceMin != nil {
		query = query.Where("products.base_price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		query = query.Where("products.base_price <= ?", *f.PriceMax)
	}
	if f.HasTieredPricing != nil {
		exists := "EXISTS (SELECT 1 FROM price_tiers pt WHERE pt.product_id = products.id)"
		if *f.HasTieredPricing {
			query = query.Where(exists)
		} else {
			query = query.Where("NOT " + exists)
		}
	}
	if f.Query != "" {
		query = query.Where("products.name LIKE ?", "%"+f.Query+"%")
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("(products.created_at, products.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	var rows []models.Product
	err = query.
		Preload("PriceTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_qty ASC")
		}).
		Order("products.created_at DESC, products.id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	var next string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

// FindSuppliers loads the supplier businesses referenced by the products.
func (r *Repository) FindSuppliers(ctx context.Context, products []models.Product) (map[uuid.UUID]models.Business, error) {
	if len(products) == 0 {
		return nil, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.SupplierBusinessID]; ok {
			continue
		}
		seen[p.SupplierBusinessID] = struct{}{}
		ids = append(ids, p.SupplierBusinessID)
	}

	var businesses []models.Business
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&businesses).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Business, len(businesses))
	for _, b := range businesses {
		out[b.ID] = b
	}
	return out, nil
}
