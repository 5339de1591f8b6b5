package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goatkit/goatchat/internal/config"
	"github.com/goatkit/goatchat/internal/metrics"
	"github.com/goatkit/goatchat/internal/middleware"
	"github.com/goatkit/goatchat/internal/service"
)

// Services bundles the service dependencies the HTTP surface needs.
type Services struct {
	Feedback *service.FeedbackService
	Closer   *service.ConversationCloser
	Chat     *service.ChatService
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(cfg *config.Config, svcs Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.RequestTimer())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerHour))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	feedbackHandler := NewFeedbackHandler(svcs.Feedback, svcs.Closer)
	chatHandler := NewChatHandler(svcs.Chat)

	feedback := router.Group("/api/feedback")
	{
		feedback.POST("/submit", feedbackHandler.HandleSubmit)
		feedback.POST("/silence", feedbackHandler.HandleSilenceCheck)
		feedback.POST("/activity/:sessionID", feedbackHandler.HandleResetActivity)
		feedback.GET("/stats", feedbackHandler.HandleStats)
		feedback.GET("/recent", feedbackHandler.HandleRecent)
		feedback.GET("/user/:userID", feedbackHandler.HandleUserHistory)
		feedback.GET("/status/:sessionID", feedbackHandler.HandleStatus)
	}

	chat := router.Group("/api/chat")
	{
		chat.POST("/message", chatHandler.HandleMessage)
		chat.GET("/history/:sessionID", chatHandler.HandleHistory)
	}

	return router
}
