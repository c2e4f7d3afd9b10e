package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client LedgerService 的 client，錯誤會還原成 *RemoteError
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient conn 通常來自 pkg/grpc.Pool
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, fromStatus(err)
	}
	return out, nil
}

func (c *Client) CreateAccount(ctx context.Context, req *CreateAccountRequest, opts ...grpc.CallOption) (*CreateAccountResponse, error) {
	return invoke[CreateAccountResponse](ctx, c, "CreateAccount", req, opts...)
}

func (c *Client) GetAccount(ctx context.Context, req *GetAccountRequest, opts ...grpc.CallOption) (*GetAccountResponse, error) {
	return invoke[GetAccountResponse](ctx, c, "GetAccount", req, opts...)
}

func (c *Client) Deposit(ctx context.Context, req *DepositRequest, opts ...grpc.CallOption) (*DepositResponse, error) {
	return invoke[DepositResponse](ctx, c, "Deposit", req, opts...)
}

func (c *Client) Withdraw(ctx context.Context, req *WithdrawRequest, opts ...grpc.CallOption) (*WithdrawResponse, error) {
	return invoke[WithdrawResponse](ctx, c, "Withdraw", req, opts...)
}

func (c *Client) Transfer(ctx context.Context, req *TransferRequest, opts ...grpc.CallOption) (*TransferResponse, error) {
	return invoke[TransferResponse](ctx, c, "Transfer", req, opts...)
}

func (c *Client) GetBalance(ctx context.Context, req *GetBalanceRequest, opts ...grpc.CallOption) (*GetBalanceResponse, error) {
	return invoke[GetBalanceResponse](ctx, c, "GetBalance", req, opts...)
}

func (c *Client) GetStatement(ctx context.Context, req *GetStatementRequest, opts ...grpc.CallOption) (*GetStatementResponse, error) {
	return invoke[GetStatementResponse](ctx, c, "GetStatement", req, opts...)
}
