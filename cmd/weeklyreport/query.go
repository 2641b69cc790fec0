package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weeklyreport/weeklyreport/internal/config"
	"github.com/weeklyreport/weeklyreport/internal/metrics"
	"github.com/weeklyreport/weeklyreport/internal/notify"
	"github.com/weeklyreport/weeklyreport/internal/report"
)

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List members without a report this week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			missing, err := a.engine.Missing(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.format.Missing(missing))
			return nil
		},
	}
}

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print submission statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			st, err := a.engine.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.format.Stats(st))
			return nil
		},
	}
}

// membersCommand reads only the config; it works without credentials.
func membersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "Print the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return fmt.Errorf("no config found in context")
			}
			roster, err := report.NewRoster(cfg.Roster)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.FormatterFor(cfg.Locale).Members(roster.Names()))
			return nil
		},
	}
}

func personCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "person <name>",
		Short: "Show one member's report status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			l, err := a.engine.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.format.Person(l))
			return nil
		},
	}
}

func remindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Post the missing list to the configured webhooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if len(a.cfg.Notify.Webhooks) == 0 {
				return fmt.Errorf("notify.webhooks is empty: nothing to remind")
			}
			missing, err := a.engine.Missing(cmd.Context())
			if err != nil {
				return err
			}
			msg := a.format.Missing(missing)
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return notify.New(a.cfg.Notify.Webhooks, nil).Remind(cmd.Context(), missing, msg)
		},
	}
}

func metricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Scrape once and print Prometheus text exposition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := appFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return metrics.WriteText(cmd.OutOrStdout(), a.registry)
		},
	}
}
