package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homelink-services/service-bookings/internal/application"
	"github.com/homelink-services/service-bookings/pkg/auth"
	"github.com/homelink-services/service-bookings/pkg/middleware"
	"github.com/homelink-services/service-bookings/pkg/response"
)

// DashboardHandler serves the per-role dashboard summaries and the public
// professional stats.
type DashboardHandler struct {
	stats *application.StatsService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(stats *application.StatsService) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// RegisterRoutes registers dashboard routes on the given router group.
func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	dashboard := r.Group("/api/v1/dashboard")
	dashboard.Use(authMW)
	{
		dashboard.GET("/customer", middleware.RequireRole(auth.RoleCustomer), h.CustomerSummary)
		dashboard.GET("/professional", middleware.RequireRole(auth.RoleProfessional), h.ProfessionalSummary)
	}

	// Public stats surface: any authenticated user can look up a
	// professional's track record.
	stats := r.Group("/api/v1/professionals")
	stats.Use(authMW)
	{
		stats.GET("/:id/stats", h.ProfessionalStats)
	}
}

// CustomerSummary handles GET /api/v1/dashboard/customer.
func (h *DashboardHandler) CustomerSummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := h.stats.CustomerSummary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, summary)
}

// ProfessionalSummary handles GET /api/v1/dashboard/professional.
func (h *DashboardHandler) ProfessionalSummary(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	summary, err := h.stats.ProfessionalSummary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, summary)
}

// ProfessionalStats handles GET /api/v1/professionals/:id/stats.
func (h *DashboardHandler) ProfessionalStats(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid professional ID")
		return
	}

	stats, err := h.stats.ProfessionalStats(c.Request.Context(), professionalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
