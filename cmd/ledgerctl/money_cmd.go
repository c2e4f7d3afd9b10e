package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	grpc_adapter "github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/in/grpc"
)

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive")
	}
	return amount, nil
}

func newDepositCmd(conn *connection) *cobra.Command {
	var desc string
	cmd := &cobra.Command{
		Use:   "deposit <account-id> <amount>",
		Short: "Deposit money into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			client, err := conn.client()
			if err != nil {
				return err
			}
			ctx, cancel := conn.context()
			defer cancel()

			resp, err := client.Deposit(ctx, &grpc_adapter.DepositRequest{
				AccountID:   args[0],
				Amount:      amount,
				Description: desc,
			})
			if err != nil {
				return err
			}
			pterm.Success.Println("Deposit posted")
			renderTransaction(resp.Transaction)
			return nil
		},
	}
	cmd.Flags().StringVarP(&desc, "description", "d", "", "description")
	return cmd
}

// WithdrawRunner 提款前會先以 survey 確認 (除非 --yes)
type WithdrawRunner struct {
	conn *connection
	desc string
	yes  bool
}

func newWithdrawCmd(conn *connection) *cobra.Command {
	runner := &WithdrawRunner{conn: conn}
	cmd := &cobra.Command{
		Use:   "withdraw <account-id> <amount>",
		Short: "Withdraw money from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Run(args[0], args[1])
		},
	}
	cmd.Flags().StringVarP(&runner.desc, "description", "d", "", "description")
	cmd.Flags().BoolVarP(&runner.yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func (r *WithdrawRunner) Run(accountID, rawAmount string) error {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return err
	}
	if !r.yes {
		ok, err := confirmSurvey(fmt.Sprintf("Withdraw %s from %s?", amount, accountID))
		if err != nil {
			return err
		}
		if !ok {
			pterm.Info.Println("Withdrawal cancelled")
			return nil
		}
	}

	client, err := r.conn.client()
	if err != nil {
		return err
	}
	ctx, cancel := r.conn.context()
	defer cancel()

	resp, err := client.Withdraw(ctx, &grpc_adapter.WithdrawRequest{
		AccountID:   accountID,
		Amount:      amount,
		Description: r.desc,
	})
	if err != nil {
		return err
	}
	pterm.Success.Println("Withdrawal posted")
	renderTransaction(resp.Transaction)
	return nil
}

// TransferRunner 轉帳前會先以 huh 確認 (除非 --yes)
type TransferRunner struct {
	conn *connection
	desc string
	yes  bool
}

func newTransferCmd(conn *connection) *cobra.Command {
	runner := &TransferRunner{conn: conn}
	cmd := &cobra.Command{
		Use:   "transfer <from-account-id> <to-account-id> <amount>",
		Short: "Transfer money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Run(args[0], args[1], args[2])
		},
	}
	cmd.Flags().StringVarP(&runner.desc, "description", "d", "", "description")
	cmd.Flags().BoolVarP(&runner.yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func (r *TransferRunner) Run(from, to, rawAmount string) error {
	amount, err := parseAmount(rawAmount)
	if err != nil {
		return err
	}
	if !r.yes {
		ok, err := confirmHuh(fmt.Sprintf("Transfer %s from %s to %s?", amount, from, to))
		if err != nil {
			return err
		}
		if !ok {
			pterm.Info.Println("Transfer cancelled")
			return nil
		}
	}

	client, err := r.conn.client()
	if err != nil {
		return err
	}
	ctx, cancel := r.conn.context()
	defer cancel()

	resp, err := client.Transfer(ctx, &grpc_adapter.TransferRequest{
		OwnerID:     from,
		UserID:      to,
		Amount:      amount,
		Description: r.desc,
	})
	if err != nil {
		return err
	}
	pterm.Success.Println("Transfer posted")
	pterm.DefaultSection.Println("Sent")
	renderTransaction(resp.Transferred)
	pterm.DefaultSection.Println("Received")
	renderTransaction(resp.Received)
	return nil
}
