package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/memory"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/out/storetest"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-statement-ledger/pkg/keylock"
)

func startServer(t *testing.T) *grpc.ClientConn {
	t.Helper()
	dir, _ := memory.NewDirectory(nil)
	store, _ := memory.NewTransactionStore(nil)
	logger := storetest.DiscardLogger()
	ledger := usecase.NewLedgerService(dir, store, keylock.NewLocal(), logger)
	accounts := usecase.NewAccountService(dir, logger)

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterLedgerServiceServer(s, NewGrpcServer(ledger, accounts))
	healthpb.RegisterHealthServer(s, health.NewServer())
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func createAccount(t *testing.T, c *Client, name string) string {
	t.Helper()
	resp, err := c.CreateAccount(context.Background(), &CreateAccountRequest{
		Name:  name,
		Email: name + "@example.com",
	})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return resp.Account.ID
}

func TestLedgerOverGRPC(t *testing.T) {
	ctx := context.Background()
	c := NewClient(startServer(t))
	sender := createAccount(t, c, "sender")
	receiver := createAccount(t, c, "receiver")

	dep, err := c.Deposit(ctx, &DepositRequest{AccountID: sender, Amount: decimal.NewFromInt(900), Description: "Initial transaction"})
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if dep.Transaction.Type != "deposit" || dep.Transaction.CreatedAt == nil {
		t.Fatalf("deposit %+v", dep.Transaction)
	}

	tr, err := c.Transfer(ctx, &TransferRequest{OwnerID: sender, UserID: receiver, Amount: decimal.NewFromInt(800)})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !tr.Transferred.Amount.Equal(decimal.NewFromInt(-800)) || tr.Transferred.ReceiverID != receiver {
		t.Fatalf("transferred %+v", tr.Transferred)
	}
	if !tr.Received.Amount.Equal(decimal.NewFromInt(800)) || tr.Received.SenderID != sender {
		t.Fatalf("received %+v", tr.Received)
	}

	bal, err := c.GetBalance(ctx, &GetBalanceRequest{AccountID: sender})
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if !bal.Balance.Equal(decimal.NewFromInt(100)) || len(bal.Statements) != 2 {
		t.Fatalf("balance %s statements %d", bal.Balance, len(bal.Statements))
	}

	st, err := c.GetStatement(ctx, &GetStatementRequest{AccountID: receiver, StatementID: tr.Received.ID})
	if err != nil {
		t.Fatalf("GetStatement: %v", err)
	}
	if st.Transaction.Sequence != tr.Received.Sequence {
		t.Fatalf("statement %+v", st.Transaction)
	}

	acc, err := c.GetAccount(ctx, &GetAccountRequest{AccountID: receiver})
	if err != nil || acc.Account.Email != "receiver@example.com" {
		t.Fatalf("GetAccount=%+v err=%v", acc, err)
	}
}

func TestErrorsCarryKind(t *testing.T) {
	ctx := context.Background()
	c := NewClient(startServer(t))
	acc := createAccount(t, c, "a")

	cases := []struct {
		name   string
		call   func() error
		code   codes.Code
		target error
	}{
		{
			name: "insufficient funds",
			call: func() error {
				_, err := c.Withdraw(ctx, &WithdrawRequest{AccountID: acc, Amount: decimal.NewFromInt(1)})
				return err
			},
			code:   codes.FailedPrecondition,
			target: domain.ErrInsufficientFunds,
		},
		{
			name: "unknown account",
			call: func() error {
				_, err := c.Deposit(ctx, &DepositRequest{AccountID: uuid.NewString(), Amount: decimal.NewFromInt(1)})
				return err
			},
			code:   codes.NotFound,
			target: domain.ErrAccountNotFound,
		},
		{
			name: "zero amount",
			call: func() error {
				_, err := c.Deposit(ctx, &DepositRequest{AccountID: acc, Amount: decimal.Zero})
				return err
			},
			code:   codes.InvalidArgument,
			target: domain.ErrInvalidAmount,
		},
		{
			name: "duplicate email",
			call: func() error {
				_, err := c.CreateAccount(ctx, &CreateAccountRequest{Name: "again", Email: "a@example.com"})
				return err
			},
			code:   codes.AlreadyExists,
			target: domain.ErrAccountAlreadyExists,
		},
		{
			name: "malformed statement id",
			call: func() error {
				_, err := c.GetStatement(ctx, &GetStatementRequest{AccountID: acc, StatementID: "nope"})
				return err
			},
			code:   codes.NotFound,
			target: domain.ErrStatementNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if !errors.Is(err, tc.target) {
				t.Fatalf("err=%v want %v", err, tc.target)
			}
			var remote *RemoteError
			if !errors.As(err, &remote) || remote.Code != tc.code {
				t.Fatalf("remote=%+v want code %s", remote, tc.code)
			}
		})
	}
}

func TestHealthOverJSONCodec(t *testing.T) {
	conn := startServer(t)
	resp, err := healthpb.NewHealthClient(conn).Check(
		context.Background(),
		&healthpb.HealthCheckRequest{},
		grpc.CallContentSubtype(CodecName),
	)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status=%s", resp.GetStatus())
	}
}

func TestToStatusContextErrors(t *testing.T) {
	if got := status.Code(toStatus(context.DeadlineExceeded)); got != codes.DeadlineExceeded {
		t.Fatalf("code=%s", got)
	}
	if got := status.Code(toStatus(errors.New("boom"))); got != codes.Internal {
		t.Fatalf("code=%s", got)
	}
	if got := status.Code(toStatus(domain.NewStorageError("append", errors.New("disk")))); got != codes.Unavailable {
		t.Fatalf("code=%s", got)
	}
}
