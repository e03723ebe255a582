package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"fantasygw/internal/app"
	"fantasygw/internal/domain"
)

type rootOptions struct {
	configPath  string
	logLevel    string
	development bool
}

type execOptions struct {
	tool      string
	rawParams string
	params    domain.ToolParams
	week      int
	count     int
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "fantasygw",
		Short:         "Fantasy sports tool gateway backed by the Sleeper API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config file (optional)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&opts.development, "dev", false, "development logging (console encoder)")

	root.AddCommand(
		newServeCmd(logger, opts),
		newValidateCmd(logger, opts),
		newExecCmd(logger, opts),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve /execute, /health, /metrics and the MCP endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			return app.New(logger).Serve(ctx, app.ServeConfig{
				ConfigPath: opts.configPath,
				Log:        opts.logOverrides(),
			})
		},
	}
}

func newValidateCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	var printConfig bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration without opening stores or listeners",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.New(logger).ValidateConfig(cmd.Context(), app.ValidateConfig{
				ConfigPath: opts.configPath,
				Print:      printConfig,
				Out:        cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().BoolVar(&printConfig, "print", false, "print the effective configuration as YAML")
	return cmd
}

func newExecCmd(logger *zap.Logger, opts *rootOptions) *cobra.Command {
	execOpts := &execOptions{}
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Run one tool call locally and print the envelope",
		Example: "  fantasygw exec --tool get_standings --sport football --league 123456789\n" +
			"  fantasygw exec --tool search_players --params '{\"sport\":\"basketball\",\"query\":\"curry\"}'",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := execOpts.request(cmd.Flags())
			if err != nil {
				return err
			}
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			return app.New(logger).Exec(ctx, app.ExecConfig{
				ConfigPath: opts.configPath,
				Log:        opts.logOverrides(),
				Request:    req,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	bindExecFlags(cmd.Flags(), execOpts)
	_ = cmd.MarkFlagRequired("tool")
	return cmd
}

func bindExecFlags(flags *pflag.FlagSet, o *execOptions) {
	flags.StringVar(&o.tool, "tool", "", "tool name, e.g. get_standings")
	flags.StringVar(&o.rawParams, "params", "", "tool params as JSON; individual flags override fields")
	flags.StringVar(&o.params.Sport, "sport", "", "sport key: football or basketball")
	flags.StringVar(&o.params.LeagueID, "league", "", "league id")
	flags.IntVar(&o.params.SeasonYear, "season", 0, "season year")
	flags.StringVar(&o.params.TeamID, "team", "", "roster id or owner user id")
	flags.IntVar(&o.week, "week", 0, "scoring period")
	flags.StringVar(&o.params.Position, "position", "", "position filter")
	flags.IntVar(&o.count, "count", 0, "maximum number of results")
	flags.StringVar(&o.params.Query, "query", "", "player name search text")
	flags.StringVar(&o.params.Type, "type", "", "transaction type filter")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", domain.ServiceName, app.Version, app.Build)
		},
	}
}

func (o *rootOptions) logOverrides() app.LogOverrides {
	return app.LogOverrides{Level: o.logLevel, Development: o.development}
}

// request merges --params JSON with the flags that were explicitly set.
func (o *execOptions) request(flags *pflag.FlagSet) (domain.ToolRequest, error) {
	var params domain.ToolParams
	if o.rawParams != "" {
		if err := json.Unmarshal([]byte(o.rawParams), &params); err != nil {
			return domain.ToolRequest{}, fmt.Errorf("parse --params: %w", err)
		}
	}
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "sport":
			params.Sport = o.params.Sport
		case "league":
			params.LeagueID = o.params.LeagueID
		case "season":
			params.SeasonYear = o.params.SeasonYear
		case "team":
			params.TeamID = o.params.TeamID
		case "week":
			week := o.week
			params.Week = &week
		case "position":
			params.Position = o.params.Position
		case "count":
			count := o.count
			params.Count = &count
		case "query":
			params.Query = o.params.Query
		case "type":
			params.Type = o.params.Type
		}
	})
	return domain.ToolRequest{Tool: o.tool, Params: params}, nil
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
