package handlers

import (
	"net/http"

	"portfolio/internal/chat"
	"portfolio/internal/logger"
	"portfolio/internal/metrics"
	"portfolio/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options carries the HTTP-layer knobs that come from configuration.
type Options struct {
	AllowedOrigins []string
	PublicRate     string // limiter format, e.g. "10-M"; empty disables limiting
	Metrics        *metrics.Metrics
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *chat.Hub
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, hub *chat.Hub, log *logger.Logger, opts Options) *Handler {
	return &Handler{services: services, hub: hub, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger())
	if h.opts.Metrics != nil {
		router.Use(h.opts.Metrics.GinMiddleware())
		router.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))
	}
	if len(h.opts.AllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(h.opts.AllowedOrigins)))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	limit := h.publicRateLimit()

	h.registerAuthRoutes(router)
	h.registerContentRoutes(router, limit)
	h.registerAdminRoutes(router)
	h.registerChatRoutes(router)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	return cfg
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/login", h.login)
		auth.GET("/me", h.identityMiddleware, h.me)
	}

	users := r.Group("/api/users", h.identityMiddleware, h.adminOnly)
	{
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
		users.DELETE("/:id", h.deleteUser)
	}
}

func (h *Handler) registerContentRoutes(r *gin.Engine, limit gin.HandlerFunc) {
	r.GET("/api/portfolio", h.getPortfolio)
	r.POST("/api/portfolio", h.identityMiddleware, h.adminOnly, h.savePortfolio)

	gb := r.Group("/api/guestbook", h.optionalIdentity)
	{
		gb.GET("", h.listGuestbook)
		gb.GET("/newer", h.listGuestbookNewer)
		gb.POST("", limit, h.createGuestbookEntry)
		gb.PUT("/:id", h.requireIdentity, h.updateGuestbookEntry)
		gb.DELETE("/:id", h.requireIdentity, h.deleteGuestbookEntry)
	}

	leads := r.Group("/api/leads")
	{
		leads.POST("", limit, h.createLead)
		leads.GET("", h.identityMiddleware, h.adminOnly, h.listLeads)
		leads.PUT("/:id/status", h.identityMiddleware, h.adminOnly, h.setLeadStatus)
		leads.DELETE("/:id", h.identityMiddleware, h.adminOnly, h.deleteLead)
	}

	reports := r.Group("/api/reports")
	{
		reports.POST("", limit, h.createReport)
		reports.GET("", h.identityMiddleware, h.adminOnly, h.listReports)
		reports.PUT("/:id/status", h.identityMiddleware, h.adminOnly, h.setReportStatus)
		reports.DELETE("/:id", h.identityMiddleware, h.adminOnly, h.deleteReport)
	}
}

func (h *Handler) registerAdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin", h.identityMiddleware, h.adminOnly)
	{
		admin.GET("/activity", h.getActivity)
		admin.GET("/stats", h.getStats)
	}
}

func (h *Handler) registerChatRoutes(r *gin.Engine) {
	r.GET("/ws/chat", h.wsVisitor)
	r.GET("/ws/chat/admin", h.wsAdmin)

	rooms := r.Group("/api/chat/rooms")
	{
		rooms.GET("", h.identityMiddleware, h.adminOnly, h.listChatRooms)
		// The room id is the visitor's session secret, so holding it grants read access.
		rooms.GET("/:id/messages", h.listChatMessages)
	}
}

// @Summary  Health check
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
