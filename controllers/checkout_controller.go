package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amirfaris/storefront-backend/middleware"
	"github.com/amirfaris/storefront-backend/services"
)

// CheckoutController handles the client-facing checkout endpoint.
type CheckoutController struct {
	checkoutService *services.CheckoutService
	appBaseURL      string
	logger          *zap.Logger
}

// NewCheckoutController creates a new CheckoutController.
func NewCheckoutController(svc *services.CheckoutService, appBaseURL string, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{checkoutService: svc, appBaseURL: appBaseURL, logger: logger}
}

// Checkout handles POST /checkout
func (cc *CheckoutController) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var userID *uuid.UUID
	if identity, ok := middleware.GetIdentity(c); ok {
		if id, err := uuid.Parse(identity.Subject); err == nil {
			userID = &id
		}
	}

	base := cc.requestBaseURL(c)
	resp, svcErr := cc.checkoutService.Checkout(
		c.Request.Context(), &req, userID,
		base+"/payment/return",
		base+"/payment/webhook",
	)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// requestBaseURL derives the externally reachable base URL from the current
// request, falling back to the configured base URL.
func (cc *CheckoutController) requestBaseURL(c *gin.Context) string {
	host := c.Request.Host
	if host == "" {
		return cc.appBaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + host
}
