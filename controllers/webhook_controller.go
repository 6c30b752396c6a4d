package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amirfaris/storefront-backend/services"
)

// WebhookController receives the payment gateway's asynchronous callbacks.
type WebhookController struct {
	webhookService *services.WebhookService
	logger         *zap.Logger
}

// NewWebhookController creates a new WebhookController.
func NewWebhookController(svc *services.WebhookService, logger *zap.Logger) *WebhookController {
	return &WebhookController{webhookService: svc, logger: logger}
}

// HandleCallback handles POST /payment/webhook. Any non-rejected outcome is
// acknowledged with 200 so the gateway stops retrying.
func (wc *WebhookController) HandleCallback(c *gin.Context) {
	var cb services.WebhookCallback
	if err := c.ShouldBind(&cb); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid callback payload"})
		return
	}

	if svcErr := wc.webhookService.HandleCallback(c.Request.Context(), &cb); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
