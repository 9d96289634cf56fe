package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmcastellanos/supplyline-backend/api/controllers"
	"github.com/dmcastellanos/supplyline-backend/api/middleware"
	"github.com/dmcastellanos/supplyline-backend/internal/auth"
	"github.com/dmcastellanos/supplyline-backend/internal/businesses"
	"github.com/dmcastellanos/supplyline-backend/internal/cart"
	"github.com/dmcastellanos/supplyline-backend/internal/categories"
	"github.com/dmcastellanos/supplyline-backend/internal/orders"
	"github.com/dmcastellanos/supplyline-backend/internal/payments"
	product "github.com/dmcastellanos/supplyline-backend/internal/products"
	"github.com/dmcastellanos/supplyline-backend/internal/subscriptions"
	"github.com/dmcastellanos/supplyline-backend/pkg/auth/session"
	"github.com/dmcastellanos/supplyline-backend/pkg/config"
	"github.com/dmcastellanos/supplyline-backend/pkg/db"
	"github.com/dmcastellanos/supplyline-backend/pkg/enums"
	"github.com/dmcastellanos/supplyline-backend/pkg/logger"
	"github.com/dmcastellanos/supplyline-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers. Fields left nil
// surface as internal errors on the affected routes rather than at startup.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *redis.Client
	Session session.AccessSessionChecker

	Auth          auth.Service
	Register      auth.RegisterService
	AdminRegister auth.AdminRegisterService
	Switch        auth.SwitchBusinessService

	Businesses    businesses.Service
	Memberships   middleware.MembershipChecker
	Permissions   middleware.PermissionChecker
	Products      product.Service
	Cart          cart.Service
	Orders        orders.Service
	OrdersRepo    orders.Repository
	Payments      payments.Service
	Categories    categories.Service
	Subscriptions subscriptions.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.AuthRegister(d.Register, d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Session, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Post("/switch-business", controllers.AuthSwitchBusiness(d.Switch, logg))
		})
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		if !cfg.App.IsProd() {
			r.Post("/register", controllers.AdminAuthRegister(d.AdminRegister, logg))
		}
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AdminAuthLogin(d.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Session, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))
		r.Use(middleware.BusinessContext(logg))

		r.Route("/businesses/me", func(r chi.Router) {
			r.Get("/", controllers.BusinessProfile(d.Businesses, logg))
			r.Put("/", controllers.BusinessUpdate(d.Businesses, logg))
			r.Get("/users", controllers.BusinessUsers(d.Businesses, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireBusinessRoles(d.Memberships, logg, enums.MemberRoleOwner, enums.MemberRoleManager))
				r.Post("/users/invite", controllers.BusinessInvite(d.Businesses, logg))
				r.Put("/users/{userId}/permissions", controllers.BusinessUpdatePermissions(d.Businesses, logg))
				r.Delete("/users/{userId}", controllers.BusinessRemoveUser(d.Businesses, logg))
			})

			r.Route("/branches", func(r chi.Router) {
				r.Get("/", controllers.BranchList(d.Businesses, logg))
				r.Post("/", controllers.BranchCreate(d.Businesses, logg))
				r.Put("/{branchId}", controllers.BranchUpdate(d.Businesses, logg))
				r.Delete("/{branchId}", controllers.BranchDelete(d.Businesses, logg))
			})
		})

		r.Route("/restaurant", func(r chi.Router) {
			r.Use(middleware.RequireBusinessType(enums.BusinessTypeRestaurant, logg))

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/products", controllers.CatalogListProducts(d.Products, logg))
				r.Get("/products/{productId}", controllers.CatalogProductDetail(d.Products, logg))
			})
			r.Post("/cart/quote", controllers.CartQuote(d.Cart, logg))

			r.Route("/orders", func(r chi.Router) {
				r.With(middleware.RequirePermission(d.Permissions, logg, enums.PermissionPlaceOrders)).
					Post("/", controllers.RestaurantCreateOrder(d.Orders, logg))
				r.Get("/", controllers.RestaurantListOrders(d.Orders, logg))
				r.Get("/{orderId}", controllers.RestaurantOrderDetail(d.Orders, logg))
				r.Get("/{orderId}/settlement", controllers.RestaurantOrderSettlement(d.Orders, logg))
				r.With(middleware.RequirePermission(d.Permissions, logg, enums.PermissionReportPayments)).
					Post("/{orderId}/payments/notify", controllers.PaymentNotify(d.Payments, logg))
			})
			r.Get("/payments", controllers.RestaurantListPayments(d.Payments, logg))
		})

		r.Route("/supplier", func(r chi.Router) {
			r.Use(middleware.RequireBusinessType(enums.BusinessTypeSupplier, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.SupplierListProducts(d.Products, logg))
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(d.Permissions, logg, enums.PermissionManageProducts))
					r.Post("/", controllers.SupplierCreateProduct(d.Products, logg))
					r.Put("/{productId}", controllers.SupplierUpdateProduct(d.Products, logg))
					r.Put("/{productId}/tiers", controllers.SupplierReplaceTiers(d.Products, logg))
					r.Delete("/{productId}", controllers.SupplierDeactivateProduct(d.Products, logg))
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.SupplierListOrders(d.Orders, logg))
				r.Get("/{orderId}", controllers.SupplierOrderDetail(d.Orders, logg))
				r.Get("/{orderId}/settlement", controllers.SupplierOrderSettlement(d.Orders, logg))
				r.With(middleware.RequirePermission(d.Permissions, logg, enums.PermissionManageOrders)).
					Post("/{orderId}/line-items/status", controllers.SupplierBulkLineItemStatus(d.Orders, logg))
				r.Post("/{orderId}/payments/confirm", controllers.PaymentConfirm(d.Payments, logg))
			})
			r.Get("/payments", controllers.SupplierListPayments(d.Payments, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Session, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/businesses", func(r chi.Router) {
			r.Get("/pending", controllers.AdminListPendingBusinesses(d.Businesses, logg))
			r.Post("/{businessId}/approve", controllers.AdminApproveBusiness(d.Businesses, logg))
			r.Post("/{businessId}/reject", controllers.AdminRejectBusiness(d.Businesses, logg))
			r.Get("/{businessId}/subscription", controllers.AdminGetSubscription(d.Subscriptions, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminListCategories(d.Categories, logg))
			r.Post("/", controllers.AdminCreateCategory(d.Categories, logg))
			r.Put("/{categoryId}", controllers.AdminUpdateCategory(d.Categories, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(d.Categories, logg))
		})
		r.Post("/subscriptions", controllers.AdminGrantSubscription(d.Subscriptions, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(d.Orders, logg))
			r.Get("/deliveries", controllers.AdminDeliveryOrders(d.OrdersRepo, logg))
		})
		r.Get("/payments", controllers.AdminListPayments(d.Payments, logg))
	})

	return r
}
