package calculatorv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// CalculatorServiceClient is the client API for CalculatorService.
type CalculatorServiceClient interface {
	CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	CloseSession(ctx context.Context, in *CloseSessionRequest, opts ...grpc.CallOption) (*CloseSessionResponse, error)
	Apply(ctx context.Context, in *ApplyRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	PressKeys(ctx context.Context, in *PressKeysRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	GetDisplay(ctx context.Context, in *GetDisplayRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	ListHistory(ctx context.Context, in *ListHistoryRequest, opts ...grpc.CallOption) (*ListHistoryResponse, error)
	RestoreHistory(ctx context.Context, in *RestoreHistoryRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	ClearHistory(ctx context.Context, in *ClearHistoryRequest, opts ...grpc.CallOption) (*SessionResponse, error)
}

type calculatorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCalculatorServiceClient returns a client bound to cc.
func NewCalculatorServiceClient(cc grpc.ClientConnInterface) CalculatorServiceClient {
	return &calculatorServiceClient{cc: cc}
}

func (c *calculatorServiceClient) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, CalculatorService_CreateSession_FullMethodName, in, opts)
}

func (c *calculatorServiceClient) CloseSession(ctx context.Context, in *CloseSessionRequest, opts ...grpc.CallOption) (*CloseSessionResponse, error) {
	return invoke[CloseSessionResponse](ctx, c.cc, CalculatorService_CloseSession_FullMethodName, in, opts)
}

func (c *calculatorServiceClient) Apply(ctx context.Context, in *ApplyRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, CalculatorService_Apply_FullMethodName, in, opts)
}

func (c *calculatorServiceClient) PressKeys(ctx context.Context, in *PressKeysRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, CalculatorService_PressKeys_FullMethodName, in, opts)
}

func (c *calculatorServiceClient) GetDisplay(ctx context.Context, in *GetDisplayRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, CalculatorService_GetDisplay_FullMethodName, in, opts)
}

func (c *calculatorServiceClient) ListHistory(ctx context.Context, in *ListHistoryRequest, opts ...grpc.CallOption) (*ListHistoryResponse, error) {
	return invoke[ListHistoryResponse](ctx, c.cc, CalculatorService_ListHistory_FullMethodName, in, opts)
}

func (c *calculatorServiceClient) RestoreHistory(ctx context.Context, in *RestoreHistoryRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, CalculatorService_RestoreHistory_FullMethodName, in, opts)
}

func (c *calculatorServiceClient) ClearHistory(ctx context.Context, in *ClearHistoryRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, CalculatorService_ClearHistory_FullMethodName, in, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	wire, err := ToStruct(in)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s: %v", method, err)
	}
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, wire, out, opts...); err != nil {
		return nil, err
	}
	resp := new(Resp)
	if err := FromStruct(out, resp); err != nil {
		return nil, status.Errorf(codes.Internal, "%s: %v", method, err)
	}
	return resp, nil
}
