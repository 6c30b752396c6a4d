package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/amirfaris/storefront-backend/controllers"
	"github.com/amirfaris/storefront-backend/middleware"
)

// Controllers bundles everything the router needs.
type Controllers struct {
	Checkout *controllers.CheckoutController
	Webhook  *controllers.WebhookController
	Order    *controllers.OrderController
	Product  *controllers.ProductController
}

// Register wires all HTTP routes onto the engine.
func Register(r *gin.Engine, c *Controllers, jwtSecret string) {
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/products", c.Product.ListProducts)
	r.GET("/products/:id", c.Product.GetProduct)

	checkoutLimiter := middleware.NewRateLimiter(rate.Limit(1), 5)
	r.POST("/checkout",
		checkoutLimiter.Middleware(),
		middleware.OptionalAuth(jwtSecret),
		c.Checkout.Checkout,
	)

	// Gateway callbacks are authenticated by the stored bill code, not by a
	// bearer token.
	r.POST("/payment/webhook", c.Webhook.HandleCallback)

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(jwtSecret), middleware.RequireAdmin())
	admin.GET("/orders", c.Order.ListOrders)
	admin.GET("/orders/:id", c.Order.GetOrder)
	admin.PATCH("/orders", c.Order.UpdateOrderStatus)
}
