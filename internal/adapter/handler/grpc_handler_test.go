package handler

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newGRPCConn(t *testing.T) *grpc.ClientConn {
	t.Helper()
	svc, _ := newTestService(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterCartServiceServer(srv, NewGRPCHandler(svc))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, in interface{}) *structpb.Struct {
	t.Helper()
	out := new(structpb.Struct)
	if err := conn.Invoke(context.Background(), "/shopcart.v1.CartService/"+method, in, out); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return out
}

func TestGRPCCartFlow(t *testing.T) {
	conn := newGRPCConn(t)

	resp := invoke(t, conn, "AddProduct", wrapperspb.Int64(1))
	if !resp.Fields["success"].GetBoolValue() {
		t.Fatalf("expected success, got %v", resp)
	}

	update, _ := structpb.NewStruct(map[string]interface{}{"productId": 1, "amount": 2})
	resp = invoke(t, conn, "UpdateProductAmount", update)
	cart := resp.Fields["cart"].GetListValue().GetValues()
	if len(cart) != 1 {
		t.Fatalf("expected one entry, got %d", len(cart))
	}
	if got := cart[0].GetStructValue().Fields["amount"].GetNumberValue(); got != 2 {
		t.Errorf("expected amount 2, got %v", got)
	}

	resp = invoke(t, conn, "GetCart", &emptypb.Empty{})
	if got := resp.Fields["total"].GetNumberValue(); got != 200 {
		t.Errorf("expected total 200, got %v", got)
	}
}

func TestGRPCFailureInPayload(t *testing.T) {
	conn := newGRPCConn(t)

	resp := invoke(t, conn, "RemoveProduct", wrapperspb.Int64(9))
	if resp.Fields["success"].GetBoolValue() {
		t.Error("expected success=false")
	}
	if got := resp.Fields["outcome"].GetStringValue(); got != "not_found" {
		t.Errorf("expected not_found, got %s", got)
	}
}

func TestGRPCInvalidArgument(t *testing.T) {
	conn := newGRPCConn(t)

	update := func(fields map[string]interface{}) *structpb.Struct {
		s, err := structpb.NewStruct(fields)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		return s
	}

	tests := []struct {
		name   string
		method string
		in     interface{}
	}{
		{"missing fields", "UpdateProductAmount", &structpb.Struct{}},
		{"fractional amount", "UpdateProductAmount", update(map[string]interface{}{"productId": 1, "amount": 2.9})},
		{"fractional product id", "UpdateProductAmount", update(map[string]interface{}{"productId": 1.5, "amount": 2})},
		{"string amount", "UpdateProductAmount", update(map[string]interface{}{"productId": 1, "amount": "2"})},
		{"bool product id", "UpdateProductAmount", update(map[string]interface{}{"productId": true, "amount": 2})},
		{"zero product id", "UpdateProductAmount", update(map[string]interface{}{"productId": 0, "amount": 2})},
		{"add zero id", "AddProduct", wrapperspb.Int64(0)},
		{"remove negative id", "RemoveProduct", wrapperspb.Int64(-3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := new(structpb.Struct)
			err := conn.Invoke(context.Background(), "/shopcart.v1.CartService/"+tt.method, tt.in, out)
			if status.Code(err) != codes.InvalidArgument {
				t.Errorf("expected InvalidArgument, got %v", err)
			}
		})
	}

	// Rejected requests leave the cart untouched
	resp := invoke(t, conn, "GetCart", &emptypb.Empty{})
	if n := len(resp.Fields["cart"].GetListValue().GetValues()); n != 0 {
		t.Errorf("expected empty cart, got %d entries", n)
	}
}

func TestGRPCCartCarriesCatalogAttributes(t *testing.T) {
	conn := newGRPCConn(t)

	resp := invoke(t, conn, "AddProduct", wrapperspb.Int64(3))
	entry := resp.Fields["cart"].GetListValue().GetValues()[0].GetStructValue()
	if got := entry.Fields["name"].GetStringValue(); got != "Sock" {
		t.Errorf("expected name Sock, got %q", got)
	}
	if _, ok := entry.Fields["title"]; ok {
		t.Error("expected no empty title field")
	}
}
