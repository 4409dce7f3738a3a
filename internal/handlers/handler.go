package handlers

import (
	"time"

	_ "eggtimer/docs"
	"eggtimer/internal/logger"
	"eggtimer/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services   *service.Service
	log        *logger.Logger
	pingPeriod time.Duration
}

// Option tunes a Handler.
type Option func(*Handler)

// WithPingPeriod sets how often WebSocket connections are pinged.
// Non-positive values keep the default.
func WithPingPeriod(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.pingPeriod = d
		}
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log, pingPeriod: defaultPingPeriod}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// state and notification stream, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerTimerRoutes(api)
		h.registerNotificationRoutes(api)
		h.registerPushRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerTimerRoutes(api *gin.RouterGroup) {
	timer := api.Group("/timer")
	{
		timer.GET("/options", h.getOptions)
		timer.GET("/state", h.getState)
		// Body example: {"index":3}
		timer.PUT("/duration", h.setDuration)
		timer.POST("/start", h.startTimer)
		timer.POST("/cancel", h.cancelTimer)
	}
}

func (h *Handler) registerNotificationRoutes(api *gin.RouterGroup) {
	notifications := api.Group("/notifications")
	{
		notifications.GET("/current", h.getCurrentNotification)
		notifications.DELETE("", h.dismissNotifications)
		notifications.POST("/snooze", h.snooze)
	}
}

func (h *Handler) registerPushRoutes(api *gin.RouterGroup) {
	push := api.Group("/push")
	{
		push.GET("/topics", h.listTopics)
		push.POST("/topics/:topic/subscribe", h.subscribeTopic)
		push.DELETE("/topics/:topic/subscribe", h.unsubscribeTopic)
		// Body example: {"data":{"k":"v"},"notification":{"title":"Eggs","body":"Boil now"}}
		push.POST("/topics/:topic/messages", h.publish)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
