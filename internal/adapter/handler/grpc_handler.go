package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/shareit/internal/core/domain"
	"github.com/rl1809/shareit/internal/core/service"
)

type GRPCHandler struct {
	bookingService *service.BookingService
	logger         *zap.Logger
}

var _ BookingServiceServer = (*GRPCHandler)(nil)

func NewGRPCHandler(bookingService *service.BookingService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{bookingService: bookingService, logger: logger}
}

func (h *GRPCHandler) AddBooking(ctx context.Context, req *AddBookingRequest) (*BookingResponse, error) {
	start, err := ParseTimestamp(req.Start)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	end, err := ParseTimestamp(req.End)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	booking, err := h.bookingService.AddBooking(ctx, start, end, req.ItemID, req.UserID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return h.describe(ctx, booking)
}

func (h *GRPCHandler) GetBooking(ctx context.Context, req *GetBookingRequest) (*BookingResponse, error) {
	booking, err := h.bookingService.GetBookingByID(ctx, req.BookingID, req.UserID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return h.describe(ctx, booking)
}

func (h *GRPCHandler) ResolveBooking(ctx context.Context, req *ResolveBookingRequest) (*BookingResponse, error) {
	booking, err := h.bookingService.Resolve(ctx, req.BookingID, req.Approved, req.UserID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return h.describe(ctx, booking)
}

func (h *GRPCHandler) ListUserBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsReply, error) {
	return h.listByState(ctx, req, h.bookingService.GetUserBookings)
}

func (h *GRPCHandler) ListOwnerBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsReply, error) {
	return h.listByState(ctx, req, h.bookingService.GetOwnerBookings)
}

func (h *GRPCHandler) ListAllBookings(ctx context.Context, _ *ListAllBookingsRequest) (*ListBookingsReply, error) {
	bookings, err := h.bookingService.GetAllBookings(ctx)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return h.describeAll(ctx, bookings)
}

func (h *GRPCHandler) HasCompletedBooking(ctx context.Context, req *HasCompletedBookingRequest) (*HasCompletedBookingReply, error) {
	ok, err := h.bookingService.HasCompletedBooking(ctx, req.UserID, req.ItemID, h.bookingService.Now())
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &HasCompletedBookingReply{Completed: ok}, nil
}

func (h *GRPCHandler) listByState(ctx context.Context, req *ListBookingsRequest, list listFunc) (*ListBookingsReply, error) {
	state, err := domain.ParseBookingState(req.State)
	if err != nil {
		return nil, h.toStatus(err)
	}

	bookings, err := list(ctx, req.UserID, state)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return h.describeAll(ctx, bookings)
}

func (h *GRPCHandler) describe(ctx context.Context, booking domain.Booking) (*BookingResponse, error) {
	view, err := h.bookingService.DescribeOne(ctx, booking)
	if err != nil {
		return nil, h.toStatus(err)
	}
	resp := toBookingResponse(view)
	return &resp, nil
}

func (h *GRPCHandler) describeAll(ctx context.Context, bookings []domain.Booking) (*ListBookingsReply, error) {
	views, err := h.bookingService.Describe(ctx, bookings)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ListBookingsReply{Bookings: toBookingResponses(views)}, nil
}

func (h *GRPCHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		h.logger.Error("grpc request failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}
