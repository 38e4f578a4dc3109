package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sideshift/internal/config"
	"sideshift/pkg/exchange/sideshift"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type cli struct {
	configFile string
	envFile    string
	baseURL    string
	output     string
	timeout    time.Duration
	verbose    bool

	client *sideshift.Client
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "sideshift",
		Short:         "Query and create SideShift shifts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.connect(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.client == nil {
				return nil
			}
			return c.client.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&c.envFile, "env-file", "", "env file (default .env when present)")
	flags.StringVar(&c.baseURL, "base-url", "", "API base URL")
	flags.StringVarP(&c.output, "output", "o", outputTable, "output format: table or json")
	flags.DurationVar(&c.timeout, "timeout", 0, "HTTP timeout")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log request diagnostics to stderr")

	root.AddCommand(
		newCoinsCmd(c),
		newIconCmd(c),
		newPermissionsCmd(c),
		newPairCmd(c),
		newPairsCmd(c),
		newBestCmd(c),
		newShiftCmd(c),
		newRecentCmd(c),
		newStatsCmd(c),
		newAccountCmd(c),
		newQuoteCmd(c),
		newCheckoutCmd(c),
	)
	return root
}

func (c *cli) connect(cmd *cobra.Command) error {
	if c.output != outputTable && c.output != outputJSON {
		return fmt.Errorf("unsupported output format: %s", c.output)
	}

	cfg, err := config.Load(config.Options{ConfigFile: c.configFile, EnvFile: c.envFile})
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = c.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = c.timeout
	}
	if flags.Changed("verbose") {
		cfg.Verbose = c.verbose
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var opts []sideshift.Option
	if cfg.Verbose {
		c.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
		opts = append(opts, sideshift.WithLogger(c.logger))
	}

	client, err := sideshift.New(cfg, opts...)
	if err != nil {
		return err
	}
	c.client = client
	return nil
}
