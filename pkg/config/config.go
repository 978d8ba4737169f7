package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/krrrr38/gitlab-project-2-github/pkg/usermap"
	"github.com/spf13/viper"
)

// Keys shared by cobra flags, environment variables and the config file.
const (
	KeyGitLabURL                 = "gitlab-url"
	KeyGitLabToken               = "gitlab-token"
	KeyGitLabProject             = "gitlab-project"
	KeyGitHubAPIToken            = "github-api-token"
	KeyGitHubGitToken            = "github-git-token"
	KeyGitHubAppID               = "github-app-id"
	KeyGitHubAppInstallationID   = "github-app-installation-id"
	KeyGitHubAppPrivateKey       = "github-app-private-key"
	KeyGitHubAppPrivateKeyAsFile = "github-app-private-key-as-file"
	KeyGitHubOwner               = "github-owner"
	KeyGitHubRepo                = "github-repo"
	KeyPrivate                   = "private"
	KeyYes                       = "yes"
	KeyWorkingDir                = "working-dir"
	KeyJournal                   = "journal"
	KeyNoJournal                 = "no-journal"
	KeyContentInterval           = "content-interval"
	KeyLogLevel                  = "log-level"
	KeyLogJSON                   = "log-json"
	KeyUserMappings              = "user_mappings"

	EnvPrefix         = "G2G"
	DefaultConfigName = "gitlab-2-github"
	DefaultJournal    = "migration.db"
)

type GlobalConfig struct {
	GitLabURL                 string
	GitLabToken               string
	GitLabProject             string
	GitHubApiToken            string
	GitHubGitToken            string
	GitHubAppID               int
	GitHubAppInstallationID   int
	GitHubAppPrivateKey       string
	GitHubAppPrivateKeyAsFile bool
	GitHubOwner               string
	GitHubRepo                string
	Private                   bool
	AssumeYes                 bool
	WorkingDir                string
	JournalPath               string
	ContentInterval           time.Duration
	LogLevel                  string
	LogJSON                   bool
	UserMappings              []usermap.Entry
}

// UsesGitHubApp reports whether GitHub App credentials are configured.
func (c *GlobalConfig) UsesGitHubApp() bool {
	return c.GitHubAppID > 0 && c.GitHubAppInstallationID > 0 && c.GitHubAppPrivateKey != ""
}

// Validate checks the settings required before any remote call is made.
func (c *GlobalConfig) Validate() error {
	if c.GitLabURL == "" {
		return errors.New("gitlab url is required")
	}
	if c.GitLabToken == "" {
		return errors.New("gitlab token is required (--gitlab-token or GITLAB_TOKEN)")
	}
	if c.GitHubApiToken == "" && !c.UsesGitHubApp() {
		return errors.New("github token or github app settings are required")
	}
	if c.WorkingDir == "" {
		return errors.New("working directory is required")
	}
	return nil
}

// New returns a viper instance with defaults and environment bindings set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvs(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyGitLabURL, "https://gitlab.com")
	v.SetDefault(KeyPrivate, true)
	v.SetDefault(KeyWorkingDir, "./tmp")
	v.SetDefault(KeyContentInterval, time.Second)
	v.SetDefault(KeyLogLevel, "info")
}

func bindEnvs(v *viper.Viper) {
	// the unprefixed names are the ones operators already export for other tools
	bindings := map[string]string{
		KeyGitLabURL:               "GITLAB_URL",
		KeyGitLabToken:             "GITLAB_TOKEN",
		KeyGitHubAPIToken:          "GITHUB_API_TOKEN",
		KeyGitHubGitToken:          "GITHUB_GIT_TOKEN",
		KeyGitHubAppID:             "GITHUB_APP_ID",
		KeyGitHubAppInstallationID: "GITHUB_APP_INSTALLATION_ID",
		KeyGitHubAppPrivateKey:     "GITHUB_APP_PRIVATE_KEY",
	}
	for key, env := range bindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		_ = v.BindEnv(key, prefixed, env)
	}
}

// LoadDotEnv copies variables from an env file into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	envMap, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	for k, val := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, val)
		}
	}
	return nil
}

// ReadConfigFile loads path, or looks for gitlab-2-github.{yaml,json,toml} in
// the current directory when path is empty. Only an explicit path must exist.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(DefaultConfigName)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// Load materializes a GlobalConfig from v.
func Load(v *viper.Viper) (*GlobalConfig, error) {
	cfg := &GlobalConfig{
		GitLabURL:                 strings.TrimSuffix(v.GetString(KeyGitLabURL), "/"),
		GitLabToken:               v.GetString(KeyGitLabToken),
		GitLabProject:             v.GetString(KeyGitLabProject),
		GitHubApiToken:            v.GetString(KeyGitHubAPIToken),
		GitHubGitToken:            v.GetString(KeyGitHubGitToken),
		GitHubAppID:               v.GetInt(KeyGitHubAppID),
		GitHubAppInstallationID:   v.GetInt(KeyGitHubAppInstallationID),
		GitHubAppPrivateKey:       v.GetString(KeyGitHubAppPrivateKey),
		GitHubAppPrivateKeyAsFile: v.GetBool(KeyGitHubAppPrivateKeyAsFile),
		GitHubOwner:               v.GetString(KeyGitHubOwner),
		GitHubRepo:                v.GetString(KeyGitHubRepo),
		Private:                   v.GetBool(KeyPrivate),
		AssumeYes:                 v.GetBool(KeyYes),
		WorkingDir:                v.GetString(KeyWorkingDir),
		JournalPath:               v.GetString(KeyJournal),
		ContentInterval:           v.GetDuration(KeyContentInterval),
		LogLevel:                  v.GetString(KeyLogLevel),
		LogJSON:                   v.GetBool(KeyLogJSON),
	}

	if err := v.UnmarshalKey(KeyUserMappings, &cfg.UserMappings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", KeyUserMappings, err)
	}

	if cfg.GitHubAppPrivateKeyAsFile && cfg.GitHubAppPrivateKey != "" {
		privateKey, err := os.ReadFile(cfg.GitHubAppPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("could not read private key %s: %w", cfg.GitHubAppPrivateKey, err)
		}
		cfg.GitHubAppPrivateKey = string(privateKey)
	}

	if v.GetBool(KeyNoJournal) {
		cfg.JournalPath = ""
	} else if cfg.JournalPath == "" {
		cfg.JournalPath = filepath.Join(cfg.WorkingDir, DefaultJournal)
	}

	return cfg, nil
}
