package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName 完全修飾サービス名
const ServiceName = "txhistory.v1.TransactionHistoryService"

// メソッドのフルネーム
const (
	TransactionHistoryService_RecordTransaction_FullMethodName     = "/" + ServiceName + "/RecordTransaction"
	TransactionHistoryService_GetTransactionHistory_FullMethodName = "/" + ServiceName + "/GetTransactionHistory"
	TransactionHistoryService_GetAccountHistory_FullMethodName     = "/" + ServiceName + "/GetAccountHistory"
	TransactionHistoryService_GetTotalCount_FullMethodName         = "/" + ServiceName + "/GetTotalCount"
)

// TransactionHistoryServiceClient クライアントインターフェース
type TransactionHistoryServiceClient interface {
	RecordTransaction(ctx context.Context, in *RecordTransactionRequest, opts ...grpc.CallOption) (*RecordTransactionResponse, error)
	GetTransactionHistory(ctx context.Context, in *GetTransactionHistoryRequest, opts ...grpc.CallOption) (*GetTransactionHistoryResponse, error)
	GetAccountHistory(ctx context.Context, in *GetTransactionHistoryRequest, opts ...grpc.CallOption) (*GetTransactionHistoryResponse, error)
	GetTotalCount(ctx context.Context, in *GetTotalCountRequest, opts ...grpc.CallOption) (*GetTotalCountResponse, error)
}

type transactionHistoryServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTransactionHistoryServiceClient 新しいクライアントを作成
// 呼び出しは常にJSONコーデックを使用する。
func NewTransactionHistoryServiceClient(cc grpc.ClientConnInterface) TransactionHistoryServiceClient {
	return &transactionHistoryServiceClient{cc}
}

func (c *transactionHistoryServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *transactionHistoryServiceClient) RecordTransaction(ctx context.Context, in *RecordTransactionRequest, opts ...grpc.CallOption) (*RecordTransactionResponse, error) {
	out := new(RecordTransactionResponse)
	if err := c.invoke(ctx, TransactionHistoryService_RecordTransaction_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *transactionHistoryServiceClient) GetTransactionHistory(ctx context.Context, in *GetTransactionHistoryRequest, opts ...grpc.CallOption) (*GetTransactionHistoryResponse, error) {
	out := new(GetTransactionHistoryResponse)
	if err := c.invoke(ctx, TransactionHistoryService_GetTransactionHistory_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *transactionHistoryServiceClient) GetAccountHistory(ctx context.Context, in *GetTransactionHistoryRequest, opts ...grpc.CallOption) (*GetTransactionHistoryResponse, error) {
	out := new(GetTransactionHistoryResponse)
	if err := c.invoke(ctx, TransactionHistoryService_GetAccountHistory_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *transactionHistoryServiceClient) GetTotalCount(ctx context.Context, in *GetTotalCountRequest, opts ...grpc.CallOption) (*GetTotalCountResponse, error) {
	out := new(GetTotalCountResponse)
	if err := c.invoke(ctx, TransactionHistoryService_GetTotalCount_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// TransactionHistoryServiceServer サーバーインターフェース
type TransactionHistoryServiceServer interface {
	RecordTransaction(context.Context, *RecordTransactionRequest) (*RecordTransactionResponse, error)
	GetTransactionHistory(context.Context, *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error)
	GetAccountHistory(context.Context, *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error)
	GetTotalCount(context.Context, *GetTotalCountRequest) (*GetTotalCountResponse, error)
	mustEmbedUnimplementedTransactionHistoryServiceServer()
}

// UnimplementedTransactionHistoryServiceServer 前方互換のための埋め込み用実装
type UnimplementedTransactionHistoryServiceServer struct{}

func (UnimplementedTransactionHistoryServiceServer) RecordTransaction(context.Context, *RecordTransactionRequest) (*RecordTransactionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordTransaction not implemented")
}
func (UnimplementedTransactionHistoryServiceServer) GetTransactionHistory(context.Context, *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTransactionHistory not implemented")
}
func (UnimplementedTransactionHistoryServiceServer) GetAccountHistory(context.Context, *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetAccountHistory not implemented")
}
func (UnimplementedTransactionHistoryServiceServer) GetTotalCount(context.Context, *GetTotalCountRequest) (*GetTotalCountResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetTotalCount not implemented")
}
func (UnimplementedTransactionHistoryServiceServer) mustEmbedUnimplementedTransactionHistoryServiceServer() {
}

// RegisterTransactionHistoryServiceServer サーバーを登録
func RegisterTransactionHistoryServiceServer(s grpc.ServiceRegistrar, srv TransactionHistoryServiceServer) {
	s.RegisterService(&TransactionHistoryService_ServiceDesc, srv)
}

func _TransactionHistoryService_RecordTransaction_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RecordTransactionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransactionHistoryServiceServer).RecordTransaction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TransactionHistoryService_RecordTransaction_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TransactionHistoryServiceServer).RecordTransaction(ctx, req.(*RecordTransactionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TransactionHistoryService_GetTransactionHistory_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetTransactionHistoryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransactionHistoryServiceServer).GetTransactionHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TransactionHistoryService_GetTransactionHistory_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TransactionHistoryServiceServer).GetTransactionHistory(ctx, req.(*GetTransactionHistoryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TransactionHistoryService_GetAccountHistory_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetTransactionHistoryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransactionHistoryServiceServer).GetAccountHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TransactionHistoryService_GetAccountHistory_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TransactionHistoryServiceServer).GetAccountHistory(ctx, req.(*GetTransactionHistoryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TransactionHistoryService_GetTotalCount_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetTotalCountRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransactionHistoryServiceServer).GetTotalCount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TransactionHistoryService_GetTotalCount_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TransactionHistoryServiceServer).GetTotalCount(ctx, req.(*GetTotalCountRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// TransactionHistoryService_ServiceDesc サービス記述子
var TransactionHistoryService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransactionHistoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RecordTransaction",
			Handler:    _TransactionHistoryService_RecordTransaction_Handler,
		},
		{
			MethodName: "GetTransactionHistory",
			Handler:    _TransactionHistoryService_GetTransactionHistory_Handler,
		},
		{
			MethodName: "GetAccountHistory",
			Handler:    _TransactionHistoryService_GetAccountHistory_Handler,
		},
		{
			MethodName: "GetTotalCount",
			Handler:    _TransactionHistoryService_GetTotalCount_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "txhistory/v1/txhistory.proto",
}
