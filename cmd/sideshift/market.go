package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sideshift/pkg/aggregate"
	"sideshift/pkg/core"
	"sideshift/pkg/exchange"
)

func newCoinsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "coins",
		Short: "List supported coins and networks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(c, cmd.OutOrStdout(), c.client.GetCoins(cmd.Context()), coinsTable)
		},
	}
}

func newIconCmd(c *cli) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "icon <coin-network>",
		Short: "Download a coin icon (svg or png)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			icon, err := c.client.GetCoinIcon(cmd.Context(), args[0]).Unwrap()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(icon.Data)
				return err
			}
			if err := os.WriteFile(out, icon.Data, 0o644); err != nil {
				return fmt.Errorf("write icon: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes (%s) to %s\n", len(icon.Data), icon.ContentType, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the icon to this file instead of stdout")
	return cmd
}

func newPermissionsCmd(c *cli) *cobra.Command {
	var userIP string

	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Check whether shifts may be created from this IP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := c.client.GetPermissions(cmd.Context(), exchange.WithUserIP(userIP))
			return render[core.Permissions](c, cmd.OutOrStdout(), resp, nil)
		},
	}
	cmd.Flags().StringVar(&userIP, "user-ip", "", "end user IP forwarded as x-user-ip")
	return cmd
}

func newPairCmd(c *cli) *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   "pair <from> <to>",
		Short: "Show rate and deposit bounds for a coin pair",
		Long:  "Show rate and deposit bounds for a coin pair. Coins may carry a network suffix, e.g. usdc-arbitrum.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []exchange.Option
			if amount != "" {
				a, err := core.NewAmount(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				opts = append(opts, exchange.WithAmount(a))
			}
			resp := c.client.GetPair(cmd.Context(), args[0], args[1], opts...)
			return render(c, cmd.OutOrStdout(), resp, func(p core.Pair) tableWriter {
				return pairsTable([]core.Pair{p})
			})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "deposit amount used to compute the rate")
	return cmd
}

func newPairsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "pairs <coin> <coin>...",
		Short: "Show rates between every combination of the given coins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.client.GetPairs(cmd.Context(), args)
			if err != nil {
				return err
			}
			return render(c, cmd.OutOrStdout(), resp, pairsTable)
		},
	}
}

func newRecentCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently completed shifts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp := c.client.GetRecentShifts(cmd.Context(), exchange.WithLimit(limit))
			return render(c, cmd.OutOrStdout(), resp, recentTable)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", exchange.DefaultRecentShiftsLimit, "number of shifts, 1 to 100")
	return cmd
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show XAI token statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render[core.XaiStats](c, cmd.OutOrStdout(), c.client.GetXaiStats(cmd.Context()), nil)
		},
	}
}

func newAccountCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the balances of the configured account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render[core.Account](c, cmd.OutOrStdout(), c.client.GetAccount(cmd.Context()), nil)
		},
	}
}

func newBestCmd(c *cli) *cobra.Command {
	var (
		to     []string
		amount string
	)

	cmd := &cobra.Command{
		Use:   "best <from>...",
		Short: "Rank deposit and settle routes by rate",
		Long:  "Rank every route from the given deposit coins to the --to coins by rate, best first.",
		Example: `  sideshift best usdc-ethereum usdc-arbitrum usdc-base --to eth-ethereum
  sideshift best btc-bitcoin --to eth-ethereum --to eth-arbitrum --amount 0.5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []exchange.Option
			if amount != "" {
				a, err := core.NewAmount(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				opts = append(opts, exchange.WithAmount(a))
			}

			agg := aggregate.NewWithLogger(c.client, c.logger)
			results := agg.GetPairs(cmd.Context(), aggregate.Routes(args, to), opts...)
			ranked := aggregate.Ranked(results)
			if len(ranked) == 0 {
				for _, r := range results {
					if r.Error != nil {
						return r.Error
					}
				}
				return fmt.Errorf("no routes to compare")
			}

			if c.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), ranked)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rankedTable(ranked).Render())
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "settle coin (repeatable)")
	cmd.Flags().StringVar(&amount, "amount", "", "deposit amount used to compute the rates")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
