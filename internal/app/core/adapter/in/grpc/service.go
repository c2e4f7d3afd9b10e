package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName 完整服務名稱
const ServiceName = "ledger.v1.LedgerService"

// LedgerServiceServer 帳本 gRPC 服務
type LedgerServiceServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*CreateAccountResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*GetAccountResponse, error)
	Deposit(context.Context, *DepositRequest) (*DepositResponse, error)
	Withdraw(context.Context, *WithdrawRequest) (*WithdrawResponse, error)
	Transfer(context.Context, *TransferRequest) (*TransferResponse, error)
	GetBalance(context.Context, *GetBalanceRequest) (*GetBalanceResponse, error)
	GetStatement(context.Context, *GetStatementRequest) (*GetStatementResponse, error)
}

// RegisterLedgerServiceServer 註冊到 grpc.Server
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}

// unaryHandler 產生一個 method handler，Req / Resp 為該 method 的訊息型別
func unaryHandler[Req any, Resp any](method string, call func(LedgerServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LedgerServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LedgerServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LedgerServiceDesc 手寫的 ServiceDesc (訊息以 JSON codec 傳輸，不需要 protoc 產生程式碼)
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("CreateAccount", LedgerServiceServer.CreateAccount),
		unaryHandler("GetAccount", LedgerServiceServer.GetAccount),
		unaryHandler("Deposit", LedgerServiceServer.Deposit),
		unaryHandler("Withdraw", LedgerServiceServer.Withdraw),
		unaryHandler("Transfer", LedgerServiceServer.Transfer),
		unaryHandler("GetBalance", LedgerServiceServer.GetBalance),
		unaryHandler("GetStatement", LedgerServiceServer.GetStatement),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}
