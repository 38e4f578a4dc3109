package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
	"sideshift/pkg/exchange/sideshift"
	"sideshift/pkg/tracker"
)

func newShiftCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Create, inspect and follow shifts",
	}
	cmd.AddCommand(
		newShiftGetCmd(c),
		newShiftBulkCmd(c),
		newShiftWatchCmd(c),
		newShiftFixedCmd(c),
		newShiftVariableCmd(c),
		newShiftRefundCmd(c),
		newShiftCancelCmd(c),
	)
	return cmd
}

func newShiftGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one shift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(c, cmd.OutOrStdout(), c.client.GetShift(cmd.Context(), args[0]), shiftTable)
		},
	}
}

func newShiftBulkCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <id>...",
		Short: "Show several shifts in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(c, cmd.OutOrStdout(), c.client.GetBulkShifts(cmd.Context(), args), shiftsTable)
		},
	}
}

func newShiftWatchCmd(c *cli) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Poll a shift until it is settled, refunded or expired",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr := tracker.New(c.client, tracker.Config{PollInterval: interval}, tracker.WithLogger(c.logger))
			tr.OnUpdate(func(s *core.Shift) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s  %s  %s\n", time.Now().Format(time.TimeOnly), s.ID, s.Status)
			})

			shift, err := tr.Watch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(c, cmd.OutOrStdout(), core.OK(*shift, 200), shiftTable)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", tracker.DefaultPollInterval, "poll interval")
	return cmd
}

func newShiftFixedCmd(c *cli) *cobra.Command {
	var (
		body   core.FixedShiftBody
		userIP string
	)

	cmd := &cobra.Command{
		Use:   "fixed",
		Short: "Create a fixed-rate shift from a quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if body.ExternalID == "" {
				body.ExternalID = uuid.NewString()
			}
			resp := c.client.CreateFixedShift(cmd.Context(), body, exchange.WithUserIP(userIP))
			return render(c, cmd.OutOrStdout(), resp, shiftTable)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&body.QuoteID, "quote", "", "quote id")
	flags.StringVar(&body.SettleAddress, "settle-address", "", "destination address")
	flags.StringVar(&body.SettleMemo, "settle-memo", "", "destination memo")
	flags.StringVar(&body.RefundAddress, "refund-address", "", "refund address")
	flags.StringVar(&body.RefundMemo, "refund-memo", "", "refund memo")
	flags.StringVar(&body.ExternalID, "external-id", "", "caller reference (default a random UUID)")
	flags.StringVar(&userIP, "user-ip", "", "end user IP forwarded as x-user-ip")
	_ = cmd.MarkFlagRequired("quote")
	_ = cmd.MarkFlagRequired("settle-address")
	return cmd
}

func newShiftVariableCmd(c *cli) *cobra.Command {
	var (
		body   core.VariableShiftBody
		userIP string
	)

	cmd := &cobra.Command{
		Use:   "variable",
		Short: "Create a variable-rate shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if body.ExternalID == "" {
				body.ExternalID = uuid.NewString()
			}
			resp := c.client.CreateVariableShift(cmd.Context(), body, exchange.WithUserIP(userIP))
			return render(c, cmd.OutOrStdout(), resp, shiftTable)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&body.DepositCoin, "from", "", "deposit coin")
	flags.StringVar(&body.DepositNetwork, "from-network", "", "deposit network")
	flags.StringVar(&body.SettleCoin, "to", "", "settle coin")
	flags.StringVar(&body.SettleNetwork, "to-network", "", "settle network")
	flags.StringVar(&body.SettleAddress, "settle-address", "", "destination address")
	flags.StringVar(&body.SettleMemo, "settle-memo", "", "destination memo")
	flags.StringVar(&body.RefundAddress, "refund-address", "", "refund address")
	flags.StringVar(&body.RefundMemo, "refund-memo", "", "refund memo")
	flags.StringVar(&body.ExternalID, "external-id", "", "caller reference (default a random UUID)")
	flags.StringVar(&userIP, "user-ip", "", "end user IP forwarded as x-user-ip")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("settle-address")
	return cmd
}

func newShiftRefundCmd(c *cli) *cobra.Command {
	var memo string

	cmd := &cobra.Command{
		Use:   "refund-address <id> <address>",
		Short: "Set the refund address of a shift",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := c.client.SetRefundAddress(cmd.Context(), args[0], args[1], memo)
			return render(c, cmd.OutOrStdout(), resp, shiftTable)
		},
	}
	cmd.Flags().StringVar(&memo, "memo", "", "refund memo")
	return cmd
}

func newShiftCancelCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order that has not received a deposit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.client.CancelOrder(cmd.Context(), args[0]).Unwrap(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled %s\n", args[0])
			return nil
		},
	}
}

func newQuoteCmd(c *cli) *cobra.Command {
	var (
		from, fromNetwork string
		to, toNetwork     string
		deposit, settle   string
		userIP            string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Request a fixed-rate quote",
		Long:  "Request a fixed-rate quote for either a deposit amount or a settle amount.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (deposit == "") == (settle == "") {
				return fmt.Errorf("exactly one of --deposit and --settle is required")
			}

			builder := sideshift.NewQuoteBuilder().From(from, fromNetwork).To(to, toNetwork)
			if deposit != "" {
				builder.DepositAmount(deposit)
			} else {
				builder.SettleAmount(settle)
			}
			body, err := builder.Build()
			if err != nil {
				return err
			}

			resp, err := c.client.RequestQuote(cmd.Context(), body, exchange.WithUserIP(userIP))
			if err != nil {
				return err
			}
			return render(c, cmd.OutOrStdout(), resp, quoteTable)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&from, "from", "", "deposit coin")
	flags.StringVar(&fromNetwork, "from-network", "", "deposit network")
	flags.StringVar(&to, "to", "", "settle coin")
	flags.StringVar(&toNetwork, "to-network", "", "settle network")
	flags.StringVar(&deposit, "deposit", "", "amount to send")
	flags.StringVar(&settle, "settle", "", "amount to receive")
	flags.StringVar(&userIP, "user-ip", "", "end user IP forwarded as x-user-ip")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newCheckoutCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Inspect hosted checkouts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return render[core.Checkout](c, cmd.OutOrStdout(), c.client.GetCheckout(cmd.Context(), args[0]), nil)
		},
	})
	return cmd
}
