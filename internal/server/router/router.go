package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milkcenter/internal/server/handlers"
)

// New wires the Gin engine. webhook may be nil when messaging is not configured.
func New(ledger *handlers.LedgerHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", ledger.Health)

	api := r.Group("/api")
	{
		api.GET("/farmers", ledger.ListFarmers)
		api.POST("/farmers", ledger.CreateFarmer)
		api.PATCH("/farmers/:id/toggle", ledger.ToggleFarmer)

		api.GET("/collections", ledger.ListCollections)
		api.POST("/collections", ledger.CreateCollection)

		api.GET("/payments", ledger.ListPayments)
		api.POST("/payments", ledger.CreatePayment)

		api.GET("/balances", ledger.ListBalances)
		api.GET("/dashboard", ledger.Dashboard)
		api.GET("/top-farmers", ledger.TopFarmers)

		api.POST("/reset", ledger.Reset)
		api.GET("/export.xlsx", ledger.Export)
	}

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		r.POST("/send-message", webhook.SendMessage)
	}

	logger.Info("router initialized", zap.Bool("webhook", webhook != nil))

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("request completed", fields...)
		case status >= 400:
			logger.Warn("request completed", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
