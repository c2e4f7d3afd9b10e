package main

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/timestamppb"

	grpc_adapter "github.com/JoeShih716/go-statement-ledger/internal/app/core/adapter/in/grpc"
)

func formatTime(ts *timestamppb.Timestamp) string {
	if ts == nil {
		return "-"
	}
	return ts.AsTime().Local().Format(time.DateTime)
}

func counterparty(t *grpc_adapter.Transaction) string {
	switch {
	case t.SenderID != "":
		return "from " + t.SenderID
	case t.ReceiverID != "":
		return "to " + t.ReceiverID
	}
	return ""
}

func colorAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return pterm.Red(d.String())
	}
	return pterm.Green("+" + d.String())
}

func renderAccount(a *grpc_adapter.Account) {
	pterm.DefaultTable.WithData(pterm.TableData{
		{"ID", a.ID},
		{"Name", a.Name},
		{"Email", a.Email},
		{"Created", formatTime(a.CreatedAt)},
	}).Render()
}

func renderTransaction(t *grpc_adapter.Transaction) {
	pterm.DefaultTable.WithData(pterm.TableData{
		{"ID", t.ID},
		{"Account", t.AccountID},
		{"Type", t.Type},
		{"Amount", colorAmount(t.Amount)},
		{"Counterparty", counterparty(t)},
		{"Description", t.Description},
		{"Sequence", fmt.Sprint(t.Sequence)},
		{"Created", formatTime(t.CreatedAt)},
	}).Render()
}

func renderBalance(b *grpc_adapter.GetBalanceResponse) {
	pterm.DefaultSection.Printf("Account %s", b.AccountID)
	if len(b.Statements) == 0 {
		pterm.Info.Println("No statements")
	} else {
		data := pterm.TableData{{"#", "Date", "Type", "Amount", "Counterparty", "Description", "ID"}}
		for _, t := range b.Statements {
			data = append(data, []string{
				fmt.Sprint(t.Sequence),
				formatTime(t.CreatedAt),
				t.Type,
				colorAmount(t.Amount),
				counterparty(t),
				t.Description,
				t.ID,
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	pterm.Println()
	pterm.Printf("Balance: %s\n", pterm.Bold.Sprint(b.Balance.String()))
}
