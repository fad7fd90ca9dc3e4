package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/studio"
	"github.com/kbukum/clipkit/version"
)

func (a *app) batchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch <jobs.json>",
		Short: "Run a JSON list of jobs concurrently",
		Long: `batch reads a JSON array of jobs. Each job sets exactly one of captions,
silence, gaps, compile, shorts, export, slice, chapters or music to the
same request the matching command builds, e.g.

  [{"id": "ep1", "silence": {"input": "ep1.mp4", "output": "ep1_tight.mp4"}}]

Jobs run at most batch.max_concurrent at a time. The command fails when
any job failed; every result is printed either way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var jobs []studio.Job
			if err := readJSON(args[0], &jobs); err != nil {
				return err
			}
			results := a.studio.Batch(cmd.Context(), jobs)
			if err := a.print(cmd, results); err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", failed, len(results))
			}
			return nil
		},
	}
}

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check ffmpeg, fonts and the configured backends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			health := a.studio.Doctor(cmd.Context())
			if err := a.print(cmd, health); err != nil {
				return err
			}
			if health.Status == observability.HealthStatusDown {
				return fmt.Errorf("%s is down", health.Service)
			}
			if health.Status == observability.HealthStatusDegraded {
				logger.Warn("some components are degraded", logger.Fields("status", string(health.Status)))
			}
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asJSON {
				return a.print(cmd, info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
