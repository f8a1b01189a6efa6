package routes

import (
	"net/http"

	"checkout-service/controllers"
	"checkout-service/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RegisterOrderRoutes wires the order relay endpoint plus health and metrics.
func RegisterOrderRoutes(r *gin.Engine, controller *controllers.OrderController, logger *zap.Logger) {
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())

	api := r.Group("/api")
	{
		api.POST("/crypto-order", controller.SubmitOrder)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
