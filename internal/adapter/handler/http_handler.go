package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/core/service"
)

const UserIDHeader = "X-Sharer-User-Id"

type HTTPHandler struct {
	bookingService *service.BookingService
	logger         *zap.Logger
}

func NewHTTPHandler(bookingService *service.BookingService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{bookingService: bookingService, logger: logger}
}

// Register mounts the booking routes on r.
func (h *HTTPHandler) Register(r gin.IRouter) {
	g := r.Group("/bookings")
	g.POST("", h.AddBooking)
	g.GET("", h.ListUserBookings)
	g.GET("/owner", h.ListOwnerBookings)
	g.GET("/all", h.ListAllBookings)
	g.GET("/:id", h.GetBooking)
	g.PATCH("/:id", h.ResolveBooking)
}

func (h *HTTPHandler) AddBooking(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	booking, err := h.bookingService.AddBooking(c.Request.Context(), req.Start.Time, req.End.Time, *req.ItemID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeBooking(c, http.StatusCreated, booking)
}

func (h *HTTPHandler) GetBooking(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBookingByID(c.Request.Context(), bookingID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeBooking(c, http.StatusOK, booking)
}

func (h *HTTPHandler) ResolveBooking(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	bookingID, ok := h.bookingID(c)
	if !ok {
		return
	}

	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		h.badRequest(c, "approved must be true or false")
		return
	}

	booking, err := h.bookingService.Resolve(c.Request.Context(), bookingID, approved, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeBooking(c, http.StatusOK, booking)
}

func (h *HTTPHandler) ListUserBookings(c *gin.Context) {
	h.listByState(c, h.bookingService.GetUserBookings)
}

func (h *HTTPHandler) ListOwnerBookings(c *gin.Context) {
	h.listByState(c, h.bookingService.GetOwnerBookings)
}

func (h *HTTPHandler) ListAllBookings(c *gin.Context) {
	bookings, err := h.bookingService.GetAllBookings(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeBookings(c, bookings)
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type listFunc func(ctx context.Context, userID int64, state domain.BookingState) ([]domain.Booking, error)

func (h *HTTPHandler) listByState(c *gin.Context, list listFunc) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	state, err := domain.ParseBookingState(c.Query("state"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	bookings, err := list(c.Request.Context(), userID, state)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeBookings(c, bookings)
}

func (h *HTTPHandler) writeBooking(c *gin.Context, status int, booking domain.Booking) {
	view, err := h.bookingService.DescribeOne(c.Request.Context(), booking)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(status, toBookingResponse(view))
}

func (h *HTTPHandler) writeBookings(c *gin.Context, bookings []domain.Booking) {
	views, err := h.bookingService.Describe(c.Request.Context(), bookings)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(views))
}

func (h *HTTPHandler) userID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(UserIDHeader)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.badRequest(c, "missing or invalid "+UserIDHeader+" header")
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.badRequest(c, "invalid booking id")
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: message,
	})
}

func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(status, ErrorResponse{Error: http.StatusText(status)})
		return
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
	})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
