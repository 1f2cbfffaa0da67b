// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/config"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/events"
	"github.com/your-org/storefront-api/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Dependencies are the shared resources route handlers are built from
type Dependencies struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client // optional
	Logger      *logrus.Logger
	Publisher   events.Publisher
	Revocations auth.RevocationStore
	Gateway     payment.Gateway // defaults to the Paymob HTTP client
}

// SetupRoutes wires services and handlers and mounts every API route on rg
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	cfg := deps.Config
	log := deps.Logger

	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	revocations := deps.Revocations
	if revocations == nil {
		revocations = auth.NewMemoryRevocationStore()
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = payment.NewPaymobClient(cfg)
	}

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	userService := user.NewService(deps.DB, cfg, jwtManager, revocations, log)
	productService := product.NewService(deps.DB)
	orderService := order.NewService(deps.DB, publisher, log)
	paymentService := payment.NewService(cfg, gateway, orderService, log)
	webhooks := payment.NewWebhookHandler(payment.NewHMACVerifier(cfg.Paymob.HMACSecret), orderService, log)

	authGuard := middleware.AuthMiddleware(jwtManager, userService)

	setupHealthRoutes(rg, handlers.NewHealthHandler(deps.DB, deps.Redis))
	setupUserRoutes(rg, authGuard,
		handlers.NewAuthHandler(userService, jwtManager, cfg, log),
		handlers.NewUserProfileHandler(userService, jwtManager, cfg, log),
		handlers.NewUserAddressHandler(user.NewAddressService(deps.DB), log),
		handlers.NewCartHandler(user.NewCartService(deps.DB, productService), log),
		handlers.NewWishlistHandler(user.NewWishlistService(deps.DB, productService), log),
	)
	setupProductRoutes(rg, handlers.NewProductHandler(productService, log))
	setupOrderRoutes(rg, authGuard,
		handlers.NewOrderHandler(orderService, log),
		handlers.NewInvoiceHandler(orderService, pdf.NewService(cfg), log),
	)
	setupPaymentRoutes(rg, handlers.NewPaymentHandler(paymentService, webhooks, cfg, log))
}

func setupHealthRoutes(rg *gin.RouterGroup, h *handlers.HealthHandler) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}

// setupUserRoutes configures authentication, profile and user sub-collection routes
func setupUserRoutes(
	rg *gin.RouterGroup,
	authGuard gin.HandlerFunc,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.UserProfileHandler,
	addressHandler *handlers.UserAddressHandler,
	cartHandler *handlers.CartHandler,
	wishlistHandler *handlers.WishlistHandler,
) {
	users := rg.Group("/users")
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
		users.POST("/refresh-token", authHandler.RefreshToken)

		protected := users.Group("")
		protected.Use(authGuard)
		{
			protected.POST("/logout", authHandler.Logout)

			protected.GET("/profile", profileHandler.GetProfile)
			protected.PUT("/profile", profileHandler.UpdateProfile)
			protected.DELETE("/profile", profileHandler.DeleteProfile)

			protected.GET("/addresses", addressHandler.GetAddresses)
			protected.POST("/addresses", addressHandler.AddAddress)
			protected.PUT("/addresses/:addressId/default", addressHandler.SetDefaultAddress)

			protected.GET("/cart", cartHandler.GetCart)
			protected.POST("/cart", cartHandler.AddToCart)
			protected.DELETE("/cart", cartHandler.ClearCart)
			protected.DELETE("/cart/:productId", cartHandler.RemoveFromCart)

			protected.GET("/wishlist", wishlistHandler.GetWishlist)
			protected.POST("/wishlist", wishlistHandler.AddToWishlist)
			protected.DELETE("/wishlist/:productId", wishlistHandler.RemoveFromWishlist)
		}
	}
}

// setupProductRoutes configures catalog routes; writes are open
func setupProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.GET("", h.GetProducts)
		products.GET("/categories", h.GetCategories)
		products.GET("/category/:category", h.GetProductsByCategory)
		products.GET("/:id", h.GetProduct)
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

func setupOrderRoutes(rg *gin.RouterGroup, authGuard gin.HandlerFunc, h *handlers.OrderHandler, invoices *handlers.InvoiceHandler) {
	orders := rg.Group("/orders")
	orders.Use(authGuard)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.GetOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/invoice", invoices.GetInvoice)
	}
}

func setupPaymentRoutes(rg *gin.RouterGroup, h *handlers.PaymentHandler) {
	payments := rg.Group("/payment")
	{
		payments.POST("/create-payment", h.CreatePayment)
		payments.POST("/webhook", h.Webhook)
	}
}
