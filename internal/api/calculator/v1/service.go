package calculatorv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "tally.calculator.v1.CalculatorService"

const (
	CalculatorService_CreateSession_FullMethodName  = "/" + ServiceName + "/CreateSession"
	CalculatorService_CloseSession_FullMethodName   = "/" + ServiceName + "/CloseSession"
	CalculatorService_Apply_FullMethodName          = "/" + ServiceName + "/Apply"
	CalculatorService_PressKeys_FullMethodName      = "/" + ServiceName + "/PressKeys"
	CalculatorService_GetDisplay_FullMethodName     = "/" + ServiceName + "/GetDisplay"
	CalculatorService_ListHistory_FullMethodName    = "/" + ServiceName + "/ListHistory"
	CalculatorService_RestoreHistory_FullMethodName = "/" + ServiceName + "/RestoreHistory"
	CalculatorService_ClearHistory_FullMethodName   = "/" + ServiceName + "/ClearHistory"
)

// CalculatorServiceServer is the server API for CalculatorService.
type CalculatorServiceServer interface {
	CreateSession(context.Context, *CreateSessionRequest) (*SessionResponse, error)
	CloseSession(context.Context, *CloseSessionRequest) (*CloseSessionResponse, error)
	Apply(context.Context, *ApplyRequest) (*SessionResponse, error)
	PressKeys(context.Context, *PressKeysRequest) (*SessionResponse, error)
	GetDisplay(context.Context, *GetDisplayRequest) (*SessionResponse, error)
	ListHistory(context.Context, *ListHistoryRequest) (*ListHistoryResponse, error)
	RestoreHistory(context.Context, *RestoreHistoryRequest) (*SessionResponse, error)
	ClearHistory(context.Context, *ClearHistoryRequest) (*SessionResponse, error)
}

// CalculatorService_ServiceDesc is the grpc.ServiceDesc for CalculatorService.
var CalculatorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateSession", CalculatorServiceServer.CreateSession),
		unaryMethod("CloseSession", CalculatorServiceServer.CloseSession),
		unaryMethod("Apply", CalculatorServiceServer.Apply),
		unaryMethod("PressKeys", CalculatorServiceServer.PressKeys),
		unaryMethod("GetDisplay", CalculatorServiceServer.GetDisplay),
		unaryMethod("ListHistory", CalculatorServiceServer.ListHistory),
		unaryMethod("RestoreHistory", CalculatorServiceServer.RestoreHistory),
		unaryMethod("ClearHistory", CalculatorServiceServer.ClearHistory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tally/calculator/v1/calculator.proto",
}

// RegisterCalculatorServiceServer registers srv on s.
func RegisterCalculatorServiceServer(s grpc.ServiceRegistrar, srv CalculatorServiceServer) {
	s.RegisterService(&CalculatorService_ServiceDesc, srv)
}

func unaryMethod[Req, Resp any](name string, call func(CalculatorServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				wire, _ := req.(*structpb.Struct)
				typed := new(Req)
				if err := FromStruct(wire, typed); err != nil {
					return nil, status.Errorf(codes.InvalidArgument, "%s: %v", name, err)
				}
				resp, err := call(srv.(CalculatorServiceServer), ctx, typed)
				if err != nil {
					return nil, err
				}
				out, err := ToStruct(resp)
				if err != nil {
					return nil, status.Errorf(codes.Internal, "%s: %v", name, err)
				}
				return out, nil
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, handler)
		},
	}
}
