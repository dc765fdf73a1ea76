package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/server/handlers"
)

// Handlers groups the route handlers. Webhook is nil when WhatsApp is not configured.
type Handlers struct {
	Herd    *handlers.HerdHandler
	Webhook *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		goats := api.Group("/goats/:tag")
		goats.GET("/vaccines", h.Herd.GoatVaccines)
		goats.GET("/tags", h.Herd.GoatTags)
		goats.POST("/vaccines/:vaccineTypeID", h.Herd.RecordVaccination)
		goats.POST("/vaccines/:vaccineTypeID/reschedule", h.Herd.RescheduleVaccination)
		goats.POST("/sickness", h.Herd.RecordSickness)
		goats.POST("/recover", h.Herd.MarkRecovered)
		goats.POST("/weight", h.Herd.UpdateWeight)

		api.POST("/vaccinations/batch", h.Herd.BatchRecordVaccination)
		api.GET("/does/ready", h.Herd.ReadyDoes)
		api.GET("/calendar/events", h.Herd.CalendarEvents)
		api.GET("/dashboard", h.Herd.Dashboard)
		api.GET("/reports/vaccinations/overdue", h.Herd.OverdueReport)
		api.GET("/reports/vaccinations/compliance", h.Herd.ComplianceReport)
		api.GET("/reports/history", h.Herd.ReportHistory)
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		r.POST("/send-message", h.Webhook.SendMessage)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Bool("whatsapp", h.Webhook != nil))
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
