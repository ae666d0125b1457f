package handler

import (
	"context"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rl1809/shop-cart/internal/core/domain"
	"github.com/rl1809/shop-cart/internal/core/service"
)

const cartServiceName = "shopcart.v1.CartService"

// CartServiceServer is served over gRPC using protobuf well-known types, so
// clients need no generated stubs for the cart messages.
type CartServiceServer interface {
	GetCart(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	AddProduct(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	RemoveProduct(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	UpdateProductAmount(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type GRPCHandler struct {
	cartService *service.CartService
}

func NewGRPCHandler(cartService *service.CartService) *GRPCHandler {
	return &GRPCHandler{cartService: cartService}
}

// RegisterCartServiceServer attaches srv to s.
func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

func (h *GRPCHandler) GetCart(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return h.response(service.OutcomeOK)
}

func (h *GRPCHandler) AddProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "product id must be positive")
	}
	return h.response(h.cartService.AddProduct(ctx, req.GetValue()))
}

func (h *GRPCHandler) RemoveProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "product id must be positive")
	}
	return h.response(h.cartService.RemoveProduct(ctx, req.GetValue()))
}

// UpdateProductAmount expects {"productId": n, "amount": n}.
func (h *GRPCHandler) UpdateProductAmount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	productID, ok := fields["productId"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "productId is required")
	}
	amount, ok := fields["amount"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "amount is required")
	}

	id, err := wholeNumber(productID, "productId")
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "productId must be positive")
	}
	n, err := wholeNumber(amount, "amount")
	if err != nil {
		return nil, err
	}

	outcome := h.cartService.UpdateProductAmount(ctx, int64(id), int(n))
	return h.response(outcome)
}

// response reports business failures in the payload, not as RPC errors.
func (h *GRPCHandler) response(outcome service.Outcome) (*structpb.Struct, error) {
	cart := h.cartService.Cart()
	entries, err := cartList(cart)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode cart: %v", err)
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"success": outcome == service.OutcomeOK,
		"outcome": outcome.String(),
		"total":   cart.Total(),
		"count":   cart.Count(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode cart: %v", err)
	}
	resp.Fields["cart"] = structpb.NewListValue(entries)
	return resp, nil
}

// cartList converts the cart through its JSON form so catalog attributes
// reach the client unchanged.
func cartList(cart domain.Cart) (*structpb.ListValue, error) {
	data, err := domain.EncodeCart(cart)
	if err != nil {
		return nil, err
	}
	list := new(structpb.ListValue)
	if err := protojson.Unmarshal(data, list); err != nil {
		return nil, err
	}
	return list, nil
}

// wholeNumber reads a numeric field that must carry an integer.
func wholeNumber(v *structpb.Value, name string) (float64, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a number", name)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.IsInf(n.NumberValue, 0) {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a whole number", name)
	}
	return n.NumberValue, nil
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: cartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCart", Handler: getCartHandler},
		{MethodName: "AddProduct", Handler: addProductHandler},
		{MethodName: "RemoveProduct", Handler: removeProductHandler},
		{MethodName: "UpdateProductAmount", Handler: updateProductAmountHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "shopcart/v1/cart.proto",
}

func getCartHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CartServiceServer).GetCart(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + cartServiceName + "/GetCart"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CartServiceServer).GetCart(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func addProductHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CartServiceServer).AddProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + cartServiceName + "/AddProduct"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CartServiceServer).AddProduct(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func removeProductHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CartServiceServer).RemoveProduct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + cartServiceName + "/RemoveProduct"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CartServiceServer).RemoveProduct(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func updateProductAmountHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CartServiceServer).UpdateProductAmount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + cartServiceName + "/UpdateProductAmount"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CartServiceServer).UpdateProductAmount(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
