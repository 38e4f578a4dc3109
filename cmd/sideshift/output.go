package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jedib0t/go-pretty/v6/table"

	"sideshift/pkg/aggregate"
	"sideshift/pkg/core"
)

// tableWriter is the go-pretty table type every row builder returns.
type tableWriter = table.Writer

// render writes the data of a successful envelope. With table output, rows
// builds the table; a nil rows falls back to JSON.
func render[T any](c *cli, w io.Writer, resp *core.Response[T], rows func(T) tableWriter) error {
	data, err := resp.Unwrap()
	if err != nil {
		return err
	}

	if c.output == outputJSON || rows == nil {
		return writeJSON(w, data)
	}

	fmt.Fprintln(w, rows(data).Render())
	return nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func newTable(header ...any) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row(header))
	return t
}

func coinsTable(coins []core.Coin) table.Writer {
	t := newTable("Coin", "Name", "Networks", "Memo")
	for _, coin := range coins {
		t.AppendRow(table.Row{coin.Coin, coin.Name, strings.Join(coin.Networks, ", "), coin.HasMemo})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d coins", len(coins)), ""})
	return t
}

func pairsTable(pairs []core.Pair) table.Writer {
	t := newTable("Deposit", "Settle", "Rate", "Min", "Max")
	for _, p := range pairs {
		t.AppendRow(table.Row{
			coinOnNetwork(p.DepositCoin, p.DepositNetwork),
			coinOnNetwork(p.SettleCoin, p.SettleNetwork),
			p.Rate.String(),
			p.Min.String(),
			p.Max.String(),
		})
	}
	return t
}

func rankedTable(results []aggregate.RouteResult) tableWriter {
	t := newTable("#", "Route", "Rate", "Min", "Max")
	for i, r := range results {
		t.AppendRow(table.Row{i + 1, r.Route.String(), r.Pair.Rate.String(), r.Pair.Min.String(), r.Pair.Max.String()})
	}
	return t
}

func recentTable(shifts []core.RecentShift) table.Writer {
	t := newTable("Created", "Deposit", "Amount", "Settle", "Amount")
	for _, s := range shifts {
		t.AppendRow(table.Row{
			s.CreatedAt.Format("2006-01-02 15:04:05"),
			coinOnNetwork(s.DepositCoin, s.DepositNetwork),
			s.DepositAmount.String(),
			coinOnNetwork(s.SettleCoin, s.SettleNetwork),
			s.SettleAmount.String(),
		})
	}
	return t
}

func shiftsTable(shifts []core.Shift) table.Writer {
	t := newTable("ID", "Kind", "Status", "Deposit", "Settle", "Deposit address")
	for i := range shifts {
		s := &shifts[i]
		t.AppendRow(table.Row{
			s.ID,
			s.Kind().String(),
			string(s.Status),
			coinOnNetwork(s.DepositCoin, s.DepositNetwork),
			coinOnNetwork(s.SettleCoin, s.SettleNetwork),
			s.DepositAddress,
		})
	}
	return t
}

func shiftTable(s core.Shift) table.Writer {
	return shiftsTable([]core.Shift{s})
}

func quoteTable(q core.Quote) table.Writer {
	t := newTable("Field", "Value")
	t.AppendRows([]table.Row{
		{"ID", q.ID},
		{"Deposit", fmt.Sprintf("%s %s", q.DepositAmount.String(), coinOnNetwork(q.DepositCoin, q.DepositNetwork))},
		{"Settle", fmt.Sprintf("%s %s", q.SettleAmount.String(), coinOnNetwork(q.SettleCoin, q.SettleNetwork))},
		{"Rate", q.Rate.String()},
		{"Expires", q.ExpiresAt.Format("2006-01-02 15:04:05")},
	})
	return t
}

func coinOnNetwork(coin, network string) string {
	if network == "" {
		return coin
	}
	return coin + " (" + network + ")"
}
