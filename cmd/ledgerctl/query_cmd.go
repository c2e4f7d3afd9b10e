package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpc_adapter "github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/in/grpc"
)

func newBalanceCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show balance and every statement of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := conn.client()
			if err != nil {
				return err
			}
			ctx, cancel := conn.context()
			defer cancel()

			resp, err := client.GetBalance(ctx, &grpc_adapter.GetBalanceRequest{AccountID: args[0]})
			if err != nil {
				return err
			}
			renderBalance(resp)
			return nil
		},
	}
}

func newStatementCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "statement <account-id> <statement-id>",
		Short: "Show a single statement of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := conn.client()
			if err != nil {
				return err
			}
			ctx, cancel := conn.context()
			defer cancel()

			resp, err := client.GetStatement(ctx, &grpc_adapter.GetStatementRequest{
				AccountID:   args[0],
				StatementID: args[1],
			})
			if err != nil {
				return err
			}
			renderTransaction(resp.Transaction)
			return nil
		},
	}
}

func newPingCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the ledger server is serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := conn.conn()
			if err != nil {
				return err
			}
			ctx, cancel := conn.context()
			defer cancel()

			resp, err := healthpb.NewHealthClient(cc).Check(ctx, &healthpb.HealthCheckRequest{},
				grpc.CallContentSubtype(grpc_adapter.CodecName))
			if err != nil {
				return err
			}
			pterm.Success.Printf("%s is %s\n", conn.addr, resp.GetStatus())
			return nil
		},
	}
}
