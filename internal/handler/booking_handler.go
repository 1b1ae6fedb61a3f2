package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/slotbook/service-booking/internal/application"
	"github.com/slotbook/service-booking/pkg/domain"
	"github.com/slotbook/service-booking/pkg/response"
)

// DefaultPageLimit is used when a list request omits limit.
const DefaultPageLimit = 5

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service      *application.BookingService
	defaultLimit int
}

// NewBookingHandler creates a new BookingHandler. A non-positive
// defaultLimit falls back to DefaultPageLimit.
func NewBookingHandler(service *application.BookingService, defaultLimit int) *BookingHandler {
	if defaultLimit < 1 {
		defaultLimit = DefaultPageLimit
	}
	return &BookingHandler{service: service, defaultLimit: defaultLimit}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/search/:value", h.SearchBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "booking created", result)
}

// ListBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	page, limit, err := h.parsePagination(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.ListBookings(
		c.Request.Context(),
		page,
		limit,
		c.Query("date_filter"),
		c.Query("customer"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SearchBookings handles GET /api/v1/bookings/search/:value.
func (h *BookingHandler) SearchBookings(c *gin.Context) {
	result, err := h.service.SearchByIDOrName(c.Request.Context(), c.Param("value"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateBooking handles PUT /api/v1/bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}

	var req application.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), bookingID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "booking updated", result)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	bookingID, ok := parseBookingID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteBooking(c.Request.Context(), bookingID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "booking deleted", gin.H{"id": bookingID})
}

// parseBookingID writes a 400 and returns false when the id path parameter
// is not a positive integer.
func parseBookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(c, "invalid booking ID")
		return 0, false
	}
	return id, true
}

// parsePagination reads page and limit. Range checks are left to the query
// layer so every bad value is reported the same way.
func (h *BookingHandler) parsePagination(c *gin.Context) (int, int, error) {
	var fieldErrs []domain.FieldError

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "page", Message: "page must be an integer"})
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultLimit)))
	if err != nil {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "limit", Message: "limit must be an integer"})
	}

	if len(fieldErrs) > 0 {
		return 0, 0, domain.NewFieldValidationError("invalid pagination", fieldErrs...)
	}
	return page, limit, nil
}
