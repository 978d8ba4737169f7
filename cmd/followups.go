package cmd

import (
	"fmt"

	"github.com/krrrr38/gitlab-project-2-github/pkg/config"
	"github.com/krrrr38/gitlab-project-2-github/pkg/journal"
	"github.com/krrrr38/gitlab-project-2-github/pkg/migration"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/krrrr38/gitlab-project-2-github/pkg/report"
	"github.com/spf13/cobra"
)

func NewFollowUpsCommand(cfg *config.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "followups",
		Short: "Show the follow-up report of the last recorded migration run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.JournalPath == "" {
				return fmt.Errorf("the run journal is disabled")
			}
			j, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return err
			}
			defer j.Close()
			return showFollowUps(cmd, j)
		},
	}
}

func showFollowUps(cmd *cobra.Command, j *journal.Journal) error {
	run, err := j.LatestRun()
	if err != nil {
		return err
	}
	milestones, err := j.Milestones(run.ID)
	if err != nil {
		return err
	}
	issues, err := j.Issues(run.ID)
	if err != nil {
		return err
	}
	followUps, err := j.FollowUps(run.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	status := "still running or interrupted"
	switch {
	case run.Error != "":
		status = "failed: " + run.Error
	case run.FinishedAt.Valid:
		status = "finished"
	}
	fmt.Fprintf(out, "Run #%d started at %s, %s\n\n", run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"), status)

	return report.Render(out, &migration.Result{
		Project:    model.Project{WebURL: run.SourceURL},
		Repository: model.Repository{HTMLURL: run.TargetURL},
		Milestones: len(milestones),
		Issues:     len(issues),
		FollowUps:  followUps,
	})
}
