package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fidelity-backend/internal/analysis"
	"fidelity-backend/internal/config"
	"fidelity-backend/internal/datasource"
	"fidelity-backend/internal/evaluate"
	"fidelity-backend/internal/metrics"
	"fidelity-backend/internal/models"
	"fidelity-backend/internal/sanitize"
)

// cliOptions holds flag values shared by subcommands.
type cliOptions struct {
	configPath string
	verbose    bool
	set        string
	metrics    []string
	maxRows    int
	delimiter  string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "fidelity",
		Short: "Score how faithfully a synthetic table reproduces a real one",
		Long: `fidelity compares a real and a synthetic tabular dataset with a
library of similarity, proximity and distribution metrics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML configuration file (defaults to $FIDELITY_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log evaluation progress to stderr")

	rootCmd.AddCommand(
		newEvaluateCmd(opts),
		newDescribeCmd(opts),
		newMetricsCmd(opts),
		newEvaluateDBCmd(opts),
	)
	return rootCmd
}

func (o *cliOptions) load(stderr io.Writer) error {
	var err error
	if o.configPath != "" {
		o.cfg, err = config.Load(o.configPath)
	} else {
		o.cfg, err = config.FromEnv()
	}
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (o *cliOptions) evaluator() *evaluate.Evaluator {
	return evaluate.New(metrics.Library(), evaluate.Options{
		Workers:    o.cfg.Evaluation.Workers,
		ChunkRows:  o.cfg.Evaluation.ChunkRows,
		DefaultSet: o.cfg.Evaluation.MetricSet,
		Logger:     o.logger,
	})
}

func (o *cliOptions) csvOptions() (analysis.Options, error) {
	opts := analysis.Options{MaxRows: o.maxRows}
	if opts.MaxRows <= 0 {
		opts.MaxRows = o.cfg.Evaluation.MaxRows
	}
	switch o.delimiter {
	case "":
	case `\t`, "tab":
		opts.Delimiter = '\t'
	default:
		if len([]rune(o.delimiter)) != 1 {
			return opts, fmt.Errorf("delimiter must be a single character, got %q", o.delimiter)
		}
		opts.Delimiter = []rune(o.delimiter)[0]
	}
	return opts, nil
}

func addSelectionFlags(cmd *cobra.Command, opts *cliOptions) {
	cmd.Flags().StringVar(&opts.set, "set", "", "metric set: core, alternates or all")
	cmd.Flags().StringSliceVar(&opts.metrics, "metrics", nil, "comma separated metric names (overrides --set)")
}

func newEvaluateCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate [real.csv] [synthetic.csv]",
		Short: "Evaluate a synthetic CSV file against a real one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvOpts, err := opts.csvOptions()
			if err != nil {
				return err
			}
			real, err := analysis.ReadCSVFile(args[0], csvOpts)
			if err != nil {
				return err
			}
			synth, err := analysis.ReadCSVFile(args[1], csvOpts)
			if err != nil {
				return err
			}

			report, err := opts.evaluator().Evaluate(cmd.Context(), evaluate.Request{
				Real:      real,
				Synthetic: synth,
				Set:       opts.set,
				Metrics:   opts.metrics,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), models.NewEvaluateResponse(report))
		},
	}
	addSelectionFlags(cmd, opts)
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 0, "read at most this many rows per file")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "field delimiter (sniffed when empty)")
	return cmd
}

func newDescribeCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [file.csv]",
		Short: "Print per-column statistics of a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvOpts, err := opts.csvOptions()
			if err != nil {
				return err
			}
			tbl, err := analysis.ReadCSVFile(args[0], csvOpts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), analysis.Describe(tbl))
		},
	}
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 0, "read at most this many rows")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "field delimiter (sniffed when empty)")
	return cmd
}

func newMetricsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List available metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			core, _ := metrics.SetNames(metrics.SetCore)
			for _, d := range metrics.Library() {
				set := metrics.SetAlternates
				if contains(core, d.Name) {
					set = metrics.SetCore
				}
				fmt.Fprintf(w, "%-32s %-10s fallback=%-4s %s\n", d.Name, set, d.Ineligible, d.Description)
			}
			return nil
		},
	}
}

func newEvaluateDBCmd(opts *cliOptions) *cobra.Command {
	var (
		source datasource.Config
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "evaluate-db [real_table] [synthetic_table]",
		Short: "Evaluate two tables of a PostgreSQL or SQLite database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if limit <= 0 {
				limit = opts.cfg.Evaluation.MaxRows
			}

			src, err := datasource.Open(ctx, source, opts.logger)
			if err != nil {
				return err
			}
			defer src.Close()

			real, err := src.LoadTable(ctx, args[0], limit)
			if err != nil {
				return err
			}
			synth, err := src.LoadTable(ctx, args[1], limit)
			if err != nil {
				return err
			}

			report, err := opts.evaluator().Evaluate(ctx, evaluate.Request{
				Real:      real,
				Synthetic: synth,
				Set:       opts.set,
				Metrics:   opts.metrics,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), models.NewEvaluateResponse(report))
		},
	}
	addSelectionFlags(cmd, opts)
	cmd.Flags().StringVar(&source.Type, "type", "sqlite", "database type: postgres or sqlite")
	cmd.Flags().StringVar(&source.DSN, "dsn", "", "connection string, or the database file for sqlite")
	cmd.Flags().StringVar(&source.Host, "host", "localhost", "database host")
	cmd.Flags().IntVar(&source.Port, "port", 5432, "database port")
	cmd.Flags().StringVar(&source.User, "user", "", "database user")
	cmd.Flags().StringVar(&source.Password, "password", os.Getenv("FIDELITY_DB_PASSWORD"), "database password")
	cmd.Flags().StringVar(&source.DBName, "dbname", "", "database name")
	cmd.Flags().StringVar(&source.SSLMode, "sslmode", "disable", "postgres sslmode")
	cmd.Flags().IntVar(&limit, "limit", 0, "load at most this many rows per table")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sanitize.Value(v))
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
