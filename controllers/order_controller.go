package controllers

import (
	"context"
	"net/http"

	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderAcceptor is the slice of OrderService the controller needs.
type OrderAcceptor interface {
	SubmitOrder(ctx context.Context, sub *models.OrderSubmission) (*models.SubmitOrderResponse, *services.ServiceError)
}

type OrderController struct {
	Service OrderAcceptor
	Logger  *zap.Logger
}

func NewOrderController(service OrderAcceptor, logger *zap.Logger) *OrderController {
	return &OrderController{
		Service: service,
		Logger:  logger,
	}
}

// SubmitOrder handles POST /api/crypto-order. Internal detail never crosses
// this boundary: the client sees either "Missing order data" or the generic
// processing failure.
func (oc *OrderController) SubmitOrder(c *gin.Context) {
	var req models.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		oc.Logger.Error("Crypto order payload unreadable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process order"})
		return
	}

	if req.OrderData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order data"})
		return
	}

	resp, svcErr := oc.Service.SubmitOrder(c.Request.Context(), req.OrderData)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, resp)
}
