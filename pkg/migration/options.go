package migration

// MigrationOptions holds the run-level settings the migrator needs besides
// its collaborators.
type MigrationOptions struct {
	// Project id or namespace/path. Empty means select interactively.
	GitLabProject string
	// Destination owner (user or organization). Empty means the
	// authenticated account.
	GitHubOwner string
}
