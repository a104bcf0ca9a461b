package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/config"
	"studyplan-engine/internal/logger"
)

// NewProgressCmd prints per-week and overall completion of a roadmap.
func NewProgressCmd(configPath *string) *cobra.Command {
	var roadmapID string
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Print completion of a roadmap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgress(cmd.Context(), cmd.OutOrStdout(), *configPath, roadmapID)
		},
	}
	cmd.Flags().StringVar(&roadmapID, "roadmap", "", "roadmap id")
	_ = cmd.MarkFlagRequired("roadmap")
	return cmd
}

func runProgress(ctx context.Context, out io.Writer, configPath, roadmapID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	roadmap, err := store.GetRoadmap(ctx, roadmapID)
	if err != nil {
		return err
	}
	return printProgress(out, app.Summarize(roadmap))
}

func printProgress(out io.Writer, summary app.RoadmapSummary) error {
	if _, err := fmt.Fprintf(out, "%s: %d/%d topics (%d%%)\n",
		summary.Title, summary.Progress.Completed, summary.Progress.Total, summary.Progress.Percent); err != nil {
		return err
	}
	for _, w := range summary.Weeks {
		if _, err := fmt.Fprintf(out, "  week %d %s: %d/%d (%d%%)\n",
			w.Position, w.Title, w.Progress.Completed, w.Progress.Total, w.Progress.Percent); err != nil {
			return err
		}
	}
	return nil
}
