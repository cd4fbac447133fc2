package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/momentum/internal/replay"
	"github.com/okian/momentum/pkg/logger"
)

// Default flag values.
const (
	defaultEvents  = 120
	defaultURL     = "http://localhost:9080"
	defaultTimeout = 10 * time.Second
	defaultWait    = 30 * time.Second
	pollInterval   = 50 * time.Millisecond
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the momentum-replay command tree writing results to out
// and logs to logs.
func newRootCmd(out, logs io.Writer) *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "momentum-replay",
		Short: "Replay and simulate matches through the momentum engine",
		Long: `momentum-replay feeds recorded or synthetic matches to the momentum engine.

Scripts are YAML files holding the kickoff configuration and the ordered
events of a match. They can be replayed in-process or pushed to a running
momentum server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(logs, logFormat); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	root.AddCommand(newReplayCmd(out), newSimulateCmd(out), newPushCmd(out))
	return root
}

func newReplayCmd(out io.Writer) *cobra.Command {
	var (
		file   string
		opts   replay.Options
		output string
	)
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a match script in-process",
		Long: `Replay a YAML match script through a fresh engine and print every
per-event result followed by the analysis, forecast, triggers, critical
moments and report.

Examples:
  momentum-replay replay --file derby.yaml
  momentum-replay replay --file derby.yaml --seed 42 --horizon 15 --output summary`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := replay.LoadScript(file)
			if err != nil {
				return err
			}
			res, err := replay.Run(cmd.Context(), s, opts)
			if err != nil {
				return err
			}
			return replay.Write(out, res, output)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the YAML match script")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Random seed; 0 keeps the engine deterministic")
	cmd.Flags().IntVar(&opts.Horizon, "horizon", replay.DefaultHorizon, "Closing forecast horizon")
	cmd.Flags().StringVar(&output, "output", replay.FormatJSON, "Output: json or summary")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSimulateCmd(out io.Writer) *cobra.Command {
	var (
		events  int
		seed    int64
		horizon int
		output  string
		script  bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate and replay a synthetic match",
		Long: `Generate a synthetic match from a seed and replay it. The same seed
always produces the same match.

Examples:
  momentum-replay simulate --events 200 --seed 7
  momentum-replay simulate --seed 7 --script > match.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if events < 0 {
				return fmt.Errorf("%w: events %d", replay.ErrInvalidOption, events)
			}
			s := replay.Generate(events, seed)
			if script {
				return replay.WriteScript(out, s)
			}
			res, err := replay.Run(cmd.Context(), s, replay.Options{Seed: seed, Horizon: horizon})
			if err != nil {
				return err
			}
			return replay.Write(out, res, output)
		},
	}
	cmd.Flags().IntVar(&events, "events", defaultEvents, "Number of events to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for the generator and the engine")
	cmd.Flags().IntVar(&horizon, "horizon", replay.DefaultHorizon, "Closing forecast horizon")
	cmd.Flags().StringVar(&output, "output", replay.FormatSummary, "Output: json or summary")
	cmd.Flags().BoolVar(&script, "script", false, "Print the generated script as YAML instead of replaying it")
	return cmd
}

func newPushCmd(out io.Writer) *cobra.Command {
	var (
		file    string
		events  int
		seed    int64
		url     string
		timeout time.Duration
		wait    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a match to a running momentum server",
		Long: `Create the match on a running server and queue its events in order,
then wait for the server to apply them and print the counts with the final
report. Without --file a synthetic match is generated.

Examples:
  momentum-replay push --file derby.yaml --url http://localhost:9080
  momentum-replay push --events 500 --seed 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var s *replay.Script
			if file != "" {
				var err error
				if s, err = replay.LoadScript(file); err != nil {
					return err
				}
			} else {
				s = replay.Generate(events, seed)
			}
			ctx := cmd.Context()
			client := replay.NewClient(url, timeout)
			stats, err := client.Push(ctx, s)
			if err != nil {
				return err
			}

			waitCtx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()
			if err := client.WaitApplied(waitCtx, stats.MatchID, stats.Accepted, pollInterval); err != nil {
				return err
			}
			rep, err := client.Report(ctx, stats.MatchID)
			if err != nil {
				return err
			}
			return writeJSON(out, pushOutput{Push: stats, Report: rep})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the YAML match script")
	cmd.Flags().IntVar(&events, "events", defaultEvents, "Events to generate when no file is given")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Generator seed when no file is given")
	cmd.Flags().StringVar(&url, "url", defaultURL, "Base URL of the momentum server")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "HTTP request timeout")
	cmd.Flags().DurationVar(&wait, "wait", defaultWait, "How long to wait for queued events to be applied")
	return cmd
}
