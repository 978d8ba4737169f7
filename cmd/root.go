package cmd

import (
	"os"

	"github.com/krrrr38/gitlab-project-2-github/pkg/config"
	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCommand() *cobra.Command {
	v := config.New()
	cfg := &config.GlobalConfig{}
	var configFile, envFile string

	rootCmd := &cobra.Command{
		Use:   "gitlab-2-github",
		Short: "Migrate a GitLab project to GitHub",
		Long: `Migrate a GitLab project to GitHub.
This tool performs:
- Repository mirroring with every ref
- Collaborator invitations
- Milestone and issue migration including comments and issue history`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, v, cfg, configFile, envFile)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default is ./gitlab-2-github.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "Env file loaded before reading the environment")
	flags.String(config.KeyGitLabToken, "", "GitLab API token (or set GITLAB_TOKEN env)")
	flags.String(config.KeyGitLabURL, "https://gitlab.com", "GitLab URL (or set GITLAB_URL env)")
	flags.String(config.KeyGitLabProject, "", "GitLab project ID or path (namespace/project-name); prompts when empty")
	flags.String(config.KeyGitHubGitToken, "", "GitHub Git token (or set GITHUB_GIT_TOKEN env)")
	flags.String(config.KeyGitHubAPIToken, "", "GitHub API token (or set GITHUB_API_TOKEN env)")
	flags.Int(config.KeyGitHubAppID, 0, "GitHub APP ID (or set GITHUB_APP_ID env)")
	flags.Int(config.KeyGitHubAppInstallationID, 0, "GitHub APP Installation ID (or set GITHUB_APP_INSTALLATION_ID env)")
	flags.String(config.KeyGitHubAppPrivateKey, "", "GitHub APP private key (or set GITHUB_APP_PRIVATE_KEY env)")
	flags.Bool(config.KeyGitHubAppPrivateKeyAsFile, false, "GitHub APP private key as file")
	flags.String(config.KeyGitHubOwner, "", "GitHub owner (username or organization); the authenticated user when empty")
	flags.String(config.KeyWorkingDir, "./tmp", "Working directory for git operations")
	flags.String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error, fatal)")
	flags.Bool(config.KeyLogJSON, false, "Write logs as JSON lines")
	flags.String(config.KeyJournal, "", "Run journal database (default is <working-dir>/migration.db)")
	flags.Bool(config.KeyNoJournal, false, "Do not write a run journal")

	// Add subcommands
	rootCmd.AddCommand(NewMigrateCommand(cfg))
	rootCmd.AddCommand(NewFollowUpsCommand(cfg))

	return rootCmd
}

func loadConfig(cmd *cobra.Command, v *viper.Viper, cfg *config.GlobalConfig, configFile, envFile string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := config.ReadConfigFile(v, configFile); err != nil {
		return err
	}
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	*cfg = *loaded

	// Configure logger based on log level
	logger.Configure(os.Stderr, cfg.LogLevel, cfg.LogJSON)
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("Loaded config file", "path", used, "user_mappings", len(cfg.UserMappings))
	}
	return nil
}
