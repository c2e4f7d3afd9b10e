package grpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-statement-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-statement-ledger/internal/app/core/usecase"
)

// GrpcServer 內部 API，呼叫端 (gateway) 已完成身分驗證
type GrpcServer struct {
	ledger   *usecase.LedgerService
	accounts *usecase.AccountService
}

func NewGrpcServer(ledger *usecase.LedgerService, accounts *usecase.AccountService) *GrpcServer {
	return &GrpcServer{
		ledger:   ledger,
		accounts: accounts,
	}
}

func (s *GrpcServer) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*CreateAccountResponse, error) {
	account, err := s.accounts.Register(ctx, req.Name, req.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	return &CreateAccountResponse{Account: toAccount(account)}, nil
}

func (s *GrpcServer) GetAccount(ctx context.Context, req *GetAccountRequest) (*GetAccountResponse, error) {
	account, err := s.accounts.Profile(ctx, req.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetAccountResponse{Account: toAccount(account)}, nil
}

func (s *GrpcServer) Deposit(ctx context.Context, req *DepositRequest) (*DepositResponse, error) {
	tran, err := s.ledger.Deposit(ctx, req.AccountID, req.Amount, req.Description)
	if err != nil {
		return nil, toStatus(err)
	}
	return &DepositResponse{Transaction: toTransaction(tran)}, nil
}

func (s *GrpcServer) Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResponse, error) {
	tran, err := s.ledger.Withdraw(ctx, req.AccountID, req.Amount, req.Description)
	if err != nil {
		return nil, toStatus(err)
	}
	return &WithdrawResponse{Transaction: toTransaction(tran)}, nil
}

func (s *GrpcServer) Transfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error) {
	result, err := s.ledger.Transfer(ctx, req.OwnerID, req.UserID, req.Amount, req.Description)
	if err != nil {
		return nil, toStatus(err)
	}
	return &TransferResponse{
		Received:    toTransaction(&result.Received),
		Transferred: toTransaction(&result.Transferred),
	}, nil
}

func (s *GrpcServer) GetBalance(ctx context.Context, req *GetBalanceRequest) (*GetBalanceResponse, error) {
	balance, err := s.ledger.GetBalance(ctx, req.AccountID)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &GetBalanceResponse{
		AccountID:  balance.AccountID,
		Balance:    balance.Balance,
		Statements: make([]*Transaction, 0, len(balance.Statements)),
	}
	for i := range balance.Statements {
		resp.Statements = append(resp.Statements, toTransaction(&balance.Statements[i]))
	}
	return resp, nil
}

func (s *GrpcServer) GetStatement(ctx context.Context, req *GetStatementRequest) (*GetStatementResponse, error) {
	id, err := uuid.Parse(req.StatementID)
	if err != nil {
		// 格式錯誤的 ID 不可能存在
		return nil, toStatus(fmt.Errorf("%w: %s", domain.ErrStatementNotFound, req.StatementID))
	}
	tran, err := s.ledger.GetStatement(ctx, req.AccountID, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetStatementResponse{Transaction: toTransaction(tran)}, nil
}

var _ LedgerServiceServer = (*GrpcServer)(nil)
