package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"meetnote/internal/bootstrap"
	meetingdto "meetnote/internal/modules/meeting/dto"
	summarydto "meetnote/internal/modules/summary/dto"
	"meetnote/internal/platform/config"
	apperrors "meetnote/internal/platform/errors"
	"meetnote/internal/platform/logging"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	vaultPath  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "meetnote",
		Short:         "Simulated AI meeting assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (.yaml, .yml or .toml)")
	root.PersistentFlags().StringVar(&flags.vaultPath, "vault", "", "vault path for markdown and sqlite history export")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "trace|debug|info|warn|error|off")

	root.AddCommand(newDemoCmd(flags))
	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newServeCmd(flags))
	root.AddCommand(newSummaryCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	return root
}

func loadApp(flags *globalFlags, console io.Writer) (*bootstrap.App, error) {
	cfg, err := config.Load(flags.configPath, config.Overrides{VaultPath: flags.vaultPath, LogLevel: flags.logLevel})
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, bootstrap.Options{Logger: logging.New(cfg.LogLevel, os.Stderr), Console: console})
}

// report prints soft errors as information and returns every other error.
func report(w io.Writer, err error) error {
	if apperrors.IsSoft(err) {
		_, _ = fmt.Fprintf(w, "info: %v\n", err)
		return nil
	}
	return err
}

func newDemoCmd(flags *globalFlags) *cobra.Command {
	var platforms []string
	var meetings int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Seed platforms, record meetings and print the outcome",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if meetings < 0 {
				return fmt.Errorf("%w: --meetings must not be negative", apperrors.ErrInvalidInput)
			}
			out := cmd.OutOrStdout()
			app, err := loadApp(flags, out)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx := cmd.Context()

			if err := app.ConnectorCLI.SeedDemo(ctx); err != nil {
				return err
			}
			for _, p := range platforms {
				if _, err := app.ConnectorCLI.Connect(ctx, p); err != nil {
					if err := report(out, err); err != nil {
						return err
					}
				}
			}
			app.Scheduler.Wait()

			for n := 0; n < meetings; n++ {
				for _, p := range platforms {
					if _, err := app.MeetingCLI.Start(ctx, p); err != nil {
						return err
					}
				}
			}
			app.Scheduler.Wait()

			history, err := app.MeetingCLI.History(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out)
			for _, m := range history {
				printMeeting(out, m)
			}
			stats, err := app.MeetingCLI.Stats(ctx)
			if err != nil {
				return err
			}
			printStats(out, stats)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&platforms, "platform", []string{"Google Meet"}, "platforms to connect and record")
	cmd.Flags().IntVar(&meetings, "meetings", 1, "meetings to record per platform")
	return cmd
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.ConnectorCLI.SeedDemo(cmd.Context()); err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and websocket event stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if seed {
				if err := app.ConnectorCLI.SeedDemo(ctx); err != nil {
					return err
				}
			}
			if addr == "" {
				addr = app.Config.HTTPAddr
			}
			return app.Server.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&seed, "seed", true, "connect the demo platforms on startup")
	return cmd
}

func newSummaryCmd(flags *globalFlags) *cobra.Command {
	summary := &cobra.Command{Use: "summary", Short: "Summary generation commands"}

	summary.AddCommand(&cobra.Command{
		Use:   "generate <platform>",
		Short: "Generate one summary with the configured provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SummaryCLI.Generate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), out)
			return nil
		},
	})

	summary.AddCommand(&cobra.Command{
		Use:   "preview [title]",
		Short: "Preview a summary after the simulated processing delay",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.SummaryCLI.Preview(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "preview for %q\n", out.MeetingTitle)
			printSummary(cmd.OutOrStdout(), out.Summary)
			return nil
		},
	})
	return summary
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List meetings archived in the vault index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			meetings, err := app.MeetingCLI.Archived(cmd.Context(), limit)
			if errors.Is(err, apperrors.ErrNotConfigured) {
				return fmt.Errorf("history requires --vault: %w", err)
			}
			if err != nil {
				return err
			}
			if len(meetings) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no archived meetings")
				return nil
			}
			for _, m := range meetings {
				printMeeting(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum meetings to list")
	return cmd
}

func printMeeting(w io.Writer, m meetingdto.MeetingOutput) {
	title := m.Platform + " meeting"
	if m.Summary != nil {
		title = m.Summary.Title
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d min\t%d participants\t%s\n",
		m.StartTime.Local().Format("2006-01-02 15:04"), m.Platform, title, m.DurationMin, m.ParticipantCount, m.ID)
	if m.Summary == nil {
		return
	}
	for _, a := range m.Summary.ActionItems {
		_, _ = fmt.Fprintf(w, "\t- [ ] %s (%s, due %s)\n", a.Task, a.Assignee, a.DueDate)
	}
}

func printStats(w io.Writer, s meetingdto.StatsOutput) {
	_, _ = fmt.Fprintf(w, "\nplatforms=%d meetings=%d time_saved=%dh%02dm action_items=%d\n",
		s.ConnectedPlatforms, s.MeetingsRecorded, s.MinutesSaved/60, s.MinutesSaved%60, s.ActionItems)
}

func printSummary(w io.Writer, s summarydto.SummaryOutput) {
	_, _ = fmt.Fprintf(w, "%s (%s, confidence %s, %s)\n", s.Title, s.Sentiment, s.Confidence, s.Provider)
	_, _ = fmt.Fprintln(w, "key points:")
	for _, p := range s.KeyPoints {
		_, _ = fmt.Fprintf(w, "  - %s\n", p)
	}
	_, _ = fmt.Fprintln(w, "action items:")
	for _, a := range s.ActionItems {
		_, _ = fmt.Fprintf(w, "  - %s (%s, due %s)\n", a.Task, a.Assignee, a.DueDate)
	}
	_, _ = fmt.Fprintln(w, "decisions:")
	for _, d := range s.Decisions {
		_, _ = fmt.Fprintf(w, "  - %s\n", d)
	}
}
