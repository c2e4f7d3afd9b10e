package main

import (
	"os"
	"unicode"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func main() {
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " ERROR ",
		Style: pterm.NewStyle(pterm.BgLightRed, pterm.FgBlack),
	}

	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(capitalize(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	conn := &connection{}

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "ledgerctl is an operator CLI for the statement ledger",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return conn.close()
		},
	}
	conn.bindFlags(rootCmd)

	rootCmd.AddCommand(
		newConfigCmd(),
		newAccountCmd(conn),
		newDepositCmd(conn),
		newWithdrawCmd(conn),
		newTransferCmd(conn),
		newBalanceCmd(conn),
		newStatementCmd(conn),
		newPingCmd(conn),
	)
	return rootCmd
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
