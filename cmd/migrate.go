package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/krrrr38/gitlab-project-2-github/pkg/config"
	"github.com/krrrr38/gitlab-project-2-github/pkg/git"
	"github.com/krrrr38/gitlab-project-2-github/pkg/github"
	"github.com/krrrr38/gitlab-project-2-github/pkg/gitlab"
	"github.com/krrrr38/gitlab-project-2-github/pkg/journal"
	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/migration"
	"github.com/krrrr38/gitlab-project-2-github/pkg/prompt"
	"github.com/krrrr38/gitlab-project-2-github/pkg/report"
	"github.com/krrrr38/gitlab-project-2-github/pkg/usermap"
	"github.com/spf13/cobra"
)

func NewMigrateCommand(cfg *config.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate a GitLab project to GitHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, *cfg)
		},
	}

	// Migrate command specific flags
	cmd.Flags().String(config.KeyGitHubRepo, "", "GitHub repository name (default is <namespace>_<project>)")
	cmd.Flags().Bool(config.KeyPrivate, true, "Create the GitHub repository as private")
	cmd.Flags().BoolP(config.KeyYes, "y", false, "Answer every prompt from flags and start without confirmation")
	cmd.Flags().Duration(config.KeyContentInterval, github.DefaultContentInterval, "Pause before each issue, comment or milestone creation")

	return cmd
}

func runMigration(cmd *cobra.Command, cfg config.GlobalConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts such as CTRL+C
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	go func() {
		select {
		case <-signalChan:
			logger.Info("Received interrupt signal, shutting down...")
			// stop the running step; the report is still printed
			cancel()
		case <-ctx.Done():
		}
	}()

	source, err := gitlab.NewConnector(cfg.GitLabToken, cfg.GitLabURL)
	if err != nil {
		return err
	}

	githubClient, err := newGitHubClient(cfg)
	if err != nil {
		return err
	}
	targetToken := git.TokenFunc(githubClient.GitToken)
	if cfg.GitHubGitToken != "" {
		targetToken = git.StaticToken(cfg.GitHubGitToken)
	}
	mirror := git.NewGit(cfg.WorkingDir, git.StaticToken(cfg.GitLabToken), targetToken)

	var prompter migration.Prompter
	if cfg.AssumeYes {
		prompter = &prompt.Unattended{RepoName: cfg.GitHubRepo, Private: cfg.Private}
	} else {
		prompter = prompt.NewInteractive(cmd.OutOrStdout(), cfg.GitHubRepo, cfg.Private, os.Getenv("ACCESSIBLE") != "")
	}

	var recorder migration.Recorder
	var runJournal *journal.Journal
	if cfg.JournalPath != "" {
		runJournal, err = openJournal(cfg.JournalPath)
		if err != nil {
			return err
		}
		defer runJournal.Close()
		recorder = runJournal
		logger.Debug("Recording run journal", "path", cfg.JournalPath)
	}

	users := usermap.FromEntries(cfg.UserMappings)
	migrator := migration.NewMigrator(source, githubClient, mirror, prompter, users, recorder, migration.MigrationOptions{
		GitLabProject: cfg.GitLabProject,
		GitHubOwner:   cfg.GitHubOwner,
	})

	logger.Info("Migration started...", "gitlab", cfg.GitLabURL, "user_mappings", users.Len())
	start := time.Now()
	result, err := migrator.Run(ctx)
	if errors.Is(err, migration.ErrCanceled) {
		fmt.Fprintln(cmd.OutOrStdout(), "Migration canceled. Nothing was created on GitHub.")
		return nil
	}

	if result != nil && result.TargetURL() != "" {
		if rerr := report.Render(cmd.OutOrStdout(), result); rerr != nil {
			logger.Warn("Failed to write report", "error", rerr)
		}
	}

	var connErr *migration.ConnectivityError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w\nCheck the %s URL and access token settings", err, connErr.Platform)
	}
	if err != nil {
		if cfg.JournalPath != "" {
			logger.Error("Migration stopped part way; created items are recorded in the journal", "journal", cfg.JournalPath)
		}
		return err
	}

	logger.Info("Migration completed successfully!", "elapsed", time.Since(start).Round(time.Second))
	return nil
}

func newGitHubClient(cfg config.GlobalConfig) (*github.Client, error) {
	opts := []github.Option{github.WithContentInterval(cfg.ContentInterval)}
	if cfg.GitHubApiToken != "" {
		return github.NewClientByPAT(cfg.GitHubApiToken, opts...), nil
	}
	return github.NewClientByApp(cfg.GitHubAppID, cfg.GitHubAppInstallationID, cfg.GitHubAppPrivateKey, opts...)
}

func openJournal(path string) (*journal.Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	return journal.Open(path)
}
