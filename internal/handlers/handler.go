package handlers

import (
	"smartgarden/internal/logger"
	"smartgarden/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Telemetry stream (HTTP upgrade) on the same port
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
	api := r.Group("/api/v1", h.operatorAuth)
	{
		h.registerGardenRoutes(api)
		h.registerNoticeRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerGardenRoutes(api *gin.RouterGroup) {
	api.GET("/telemetry", h.getTelemetry)

	api.GET("/config", h.getConfig)
	// Body example: {"temp_danger_min":20,"temp_danger_max":35,...,"poll_interval_ms":3000}
	api.PUT("/config", h.putConfig)

	conn := api.Group("/connection")
	{
		conn.GET("", h.getConnection)
		// Body example: {"url":"http://192.168.1.50"}
		conn.POST("", h.connect)
		conn.DELETE("", h.disconnect)
	}

	// Body example: {"status":true}
	api.POST("/actuator", h.setActuator)
	api.POST("/acquisition/trigger", h.triggerAcquisition)
}

func (h *Handler) registerNoticeRoutes(api *gin.RouterGroup) {
	notices := api.Group("/notices")
	{
		notices.GET("", h.listNotices)
		notices.DELETE("/:id", h.dismissNotice)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
