package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	grpc_adapter "github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/in/grpc"
)

func newAccountCmd(conn *connection) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Create and inspect accounts",
	}
	accountCmd.AddCommand(newAccountCreateCmd(conn), newAccountShowCmd(conn))
	return accountCmd
}

// AccountCreateRunner flag 沒給齊時改用互動式輸入
type AccountCreateRunner struct {
	conn  *connection
	name  string
	email string
}

func newAccountCreateCmd(conn *connection) *cobra.Command {
	runner := &AccountCreateRunner{conn: conn}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new account",
		Long: `Register a new account. Missing --name / --email are asked interactively.

Example: ledgerctl account create -n Alice -e alice@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Run()
		},
	}
	cmd.Flags().StringVarP(&runner.name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&runner.email, "email", "e", "", "email (unique)")
	return cmd
}

func (r *AccountCreateRunner) Run() error {
	if r.name == "" {
		if err := promptRequired("Name", &r.name, nil); err != nil {
			return err
		}
	}
	if r.email == "" {
		if err := promptRequired("Email", &r.email, validateEmail); err != nil {
			return err
		}
	}

	client, err := r.conn.client()
	if err != nil {
		return err
	}
	ctx, cancel := r.conn.context()
	defer cancel()

	resp, err := client.CreateAccount(ctx, &grpc_adapter.CreateAccountRequest{Name: r.name, Email: r.email})
	if err != nil {
		return err
	}
	pterm.Success.Println("Account created")
	renderAccount(resp.Account)
	return nil
}

func newAccountShowCmd(conn *connection) *cobra.Command {
	return &cobra.Command{
		Use:   "show <account-id>",
		Short: "Show account details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := conn.client()
			if err != nil {
				return err
			}
			ctx, cancel := conn.context()
			defer cancel()

			resp, err := client.GetAccount(ctx, &grpc_adapter.GetAccountRequest{AccountID: args[0]})
			if err != nil {
				return err
			}
			renderAccount(resp.Account)
			return nil
		},
	}
}
