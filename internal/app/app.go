// Package app assembles the fiber applications of the product and order
// services so that main and the tests build them the same way.
package app

import (
	"storefront/internal/apperror"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

func newFiber(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: apperror.Handler,
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	return app
}

// ProductApp is the product service and the services behind it.
type ProductApp struct {
	Fiber       *fiber.App
	Products    *services.ProductService
	AuthService *services.AuthService
}

// NewProductApp builds the product service on db. Auth routes are always
// mounted; write endpoints are only guarded when cfg.AuthEnabled is set.
func NewProductApp(cfg *config.Config, db *gorm.DB) *ProductApp {
	productService := services.NewProductService(repositories.NewGORMProductRepository(db))
	authService := services.NewAuthService(repositories.NewGORMUserRepository(db), cfg.JWTSecret)

	var guard *services.AuthService
	if cfg.AuthEnabled {
		guard = authService
	}

	app := newFiber("product-service")
	handlers.NewHealthHandler(db).RegisterRoutes(app)

	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewProductHandler(productService, guard).RegisterRoutes(api)

	return &ProductApp{
		Fiber:       app,
		Products:    productService,
		AuthService: authService,
	}
}

// OrderApp is the order service and the service behind it.
type OrderApp struct {
	Fiber  *fiber.App
	Orders *services.OrderService
}

// NewOrderApp builds the order service on db with the given downstream
// clients and event publisher.
func NewOrderApp(cfg *config.Config, db *gorm.DB, products services.ProductClient, payments services.PaymentClient, publisher events.Publisher) *OrderApp {
	orderService := services.NewOrderService(repositories.NewGORMOrderRepository(db), products, payments, publisher, cfg.OrderStaleAfter)

	app := newFiber("order-service")
	handlers.NewHealthHandler(db).RegisterRoutes(app)
	handlers.NewOrderHandler(orderService).RegisterRoutes(app.Group("/api"))

	return &OrderApp{
		Fiber:  app,
		Orders: orderService,
	}
}
