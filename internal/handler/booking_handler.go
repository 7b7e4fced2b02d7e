package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homelink-services/service-bookings/internal/application"
	"github.com/homelink-services/service-bookings/pkg/auth"
	"github.com/homelink-services/service-bookings/pkg/middleware"
	"github.com/homelink-services/service-bookings/pkg/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	bookings  *application.BookingService
	messaging *application.MessagingService
	ratings   *application.RatingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(
	bookings *application.BookingService,
	messaging *application.MessagingService,
	ratings *application.RatingService,
) *BookingHandler {
	return &BookingHandler{bookings: bookings, messaging: messaging, ratings: ratings}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleCustomer), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/status", h.TransitionBooking)
		bookings.POST("/:id/messages", h.PostMessage)
		bookings.GET("/:id/messages", h.ListMessages)
		bookings.POST("/:id/messages/read", h.MarkMessagesRead)
		bookings.POST("/:id/rating", h.RateBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Customers see bookings they
// placed, professionals see bookings assigned to them.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	role, ok := middleware.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	switch role {
	case auth.RoleProfessional:
		result, err := h.bookings.GetProfessionalBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)

	default:
		result, err := h.bookings.GetCustomerBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
	}
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, userID, ok := bookingAndActor(c)
	if !ok {
		return
	}

	result, err := h.bookings.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// TransitionBooking handles POST /api/v1/bookings/:id/status. The requested
// target status carries its own role requirement, so the route itself is open
// to any authenticated participant.
func (h *BookingHandler) TransitionBooking(c *gin.Context) {
	bookingID, userID, ok := bookingAndActor(c)
	if !ok {
		return
	}

	var req application.TransitionBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.TransitionBooking(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PostMessage handles POST /api/v1/bookings/:id/messages.
func (h *BookingHandler) PostMessage(c *gin.Context) {
	bookingID, userID, ok := bookingAndActor(c)
	if !ok {
		return
	}

	var req application.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	thread, err := h.messaging.PostMessage(c.Request.Context(), bookingID, userID, req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, thread)
}

// ListMessages handles GET /api/v1/bookings/:id/messages.
func (h *BookingHandler) ListMessages(c *gin.Context) {
	bookingID, userID, ok := bookingAndActor(c)
	if !ok {
		return
	}

	thread, err := h.messaging.ListMessages(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, thread)
}

// MarkMessagesRead handles POST /api/v1/bookings/:id/messages/read. Marks
// every message sent by the other party as read.
func (h *BookingHandler) MarkMessagesRead(c *gin.Context) {
	bookingID, userID, ok := bookingAndActor(c)
	if !ok {
		return
	}

	if err := h.messaging.MarkMessagesRead(c.Request.Context(), bookingID, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// RateBooking handles POST /api/v1/bookings/:id/rating.
func (h *BookingHandler) RateBooking(c *gin.Context) {
	bookingID, userID, ok := bookingAndActor(c)
	if !ok {
		return
	}

	var req application.RateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.ratings.RateBooking(c.Request.Context(), bookingID, userID, req.Rating, req.Review); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// bookingAndActor extracts the booking ID path parameter and the
// authenticated user, writing the error response itself on failure.
func bookingAndActor(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, uuid.Nil, false
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	return bookingID, userID, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
