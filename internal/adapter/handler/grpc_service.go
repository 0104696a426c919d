package handler

import (
	"context"

	"google.golang.org/grpc"
)

const bookingServiceName = "shareit.booking.v1.BookingService"

type AddBookingRequest struct {
	UserID int64  `json:"userId"`
	ItemID int64  `json:"itemId"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

type GetBookingRequest struct {
	UserID    int64 `json:"userId"`
	BookingID int64 `json:"bookingId"`
}

type ResolveBookingRequest struct {
	UserID    int64 `json:"userId"`
	BookingID int64 `json:"bookingId"`
	Approved  bool  `json:"approved"`
}

type ListBookingsRequest struct {
	UserID int64  `json:"userId"`
	State  string `json:"state"`
}

type ListAllBookingsRequest struct{}

type ListBookingsReply struct {
	Bookings []BookingResponse `json:"bookings"`
}

type HasCompletedBookingRequest struct {
	UserID int64 `json:"userId"`
	ItemID int64 `json:"itemId"`
}

type HasCompletedBookingReply struct {
	Completed bool `json:"completed"`
}

// BookingServiceServer is the server API for the booking gRPC service.
type BookingServiceServer interface {
	AddBooking(context.Context, *AddBookingRequest) (*BookingResponse, error)
	GetBooking(context.Context, *GetBookingRequest) (*BookingResponse, error)
	ResolveBooking(context.Context, *ResolveBookingRequest) (*BookingResponse, error)
	ListUserBookings(context.Context, *ListBookingsRequest) (*ListBookingsReply, error)
	ListOwnerBookings(context.Context, *ListBookingsRequest) (*ListBookingsReply, error)
	ListAllBookings(context.Context, *ListAllBookingsRequest) (*ListBookingsReply, error)
	HasCompletedBooking(context.Context, *HasCompletedBookingRequest) (*HasCompletedBookingReply, error)
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&bookingServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + bookingServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var bookingServiceDesc = grpc.ServiceDesc{
	ServiceName: bookingServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("AddBooking", BookingServiceServer.AddBooking),
		unaryHandler("GetBooking", BookingServiceServer.GetBooking),
		unaryHandler("ResolveBooking", BookingServiceServer.ResolveBooking),
		unaryHandler("ListUserBookings", BookingServiceServer.ListUserBookings),
		unaryHandler("ListOwnerBookings", BookingServiceServer.ListOwnerBookings),
		unaryHandler("ListAllBookings", BookingServiceServer.ListAllBookings),
		unaryHandler("HasCompletedBooking", BookingServiceServer.HasCompletedBooking),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shareit/booking/v1/booking.proto",
}

// BookingServiceClient calls the booking gRPC service with the JSON codec.
type BookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) *BookingServiceClient {
	return &BookingServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+bookingServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingServiceClient) AddBooking(ctx context.Context, in *AddBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "AddBooking", in, opts)
}

func (c *BookingServiceClient) GetBooking(ctx context.Context, in *GetBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "GetBooking", in, opts)
}

func (c *BookingServiceClient) ResolveBooking(ctx context.Context, in *ResolveBookingRequest, opts ...grpc.CallOption) (*BookingResponse, error) {
	return invoke[BookingResponse](ctx, c.cc, "ResolveBooking", in, opts)
}

func (c *BookingServiceClient) ListUserBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsReply, error) {
	return invoke[ListBookingsReply](ctx, c.cc, "ListUserBookings", in, opts)
}

func (c *BookingServiceClient) ListOwnerBookings(ctx context.Context, in *ListBookingsRequest, opts ...grpc.CallOption) (*ListBookingsReply, error) {
	return invoke[ListBookingsReply](ctx, c.cc, "ListOwnerBookings", in, opts)
}

func (c *BookingServiceClient) ListAllBookings(ctx context.Context, in *ListAllBookingsRequest, opts ...grpc.CallOption) (*ListBookingsReply, error) {
	return invoke[ListBookingsReply](ctx, c.cc, "ListAllBookings", in, opts)
}

func (c *BookingServiceClient) HasCompletedBooking(ctx context.Context, in *HasCompletedBookingRequest, opts ...grpc.CallOption) (*HasCompletedBookingReply, error) {
	return invoke[HasCompletedBookingReply](ctx, c.cc, "HasCompletedBooking", in, opts)
}
