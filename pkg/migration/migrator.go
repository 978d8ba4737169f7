package migration

import (
	"context"
	"fmt"

	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/krrrr38/gitlab-project-2-github/pkg/usermap"
)

// Result summarizes a run. It is returned even when the run fails part way
// so that the follow-up log can still be reported.
type Result struct {
	Project       model.Project
	Repository    model.Repository
	Collaborators int
	Milestones    int
	Issues        int
	FollowUps     []string
}

// SourceURL returns the web URL of the migrated project.
func (r *Result) SourceURL() string {
	return r.Project.WebURL
}

// TargetURL returns the web URL of the created repository.
func (r *Result) TargetURL() string {
	return r.Repository.HTMLURL
}

// Migrator drives a complete project migration.
type Migrator struct {
	source   Source
	target   Target
	mirror   Mirror
	prompter Prompter
	users    *usermap.Mapper
	recorder Recorder
	opts     MigrationOptions
}

// NewMigrator wires a Migrator. recorder may be nil.
func NewMigrator(source Source, target Target, mirror Mirror, prompter Prompter, users *usermap.Mapper, recorder Recorder, opts MigrationOptions) *Migrator {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Migrator{
		source:   source,
		target:   target,
		mirror:   mirror,
		prompter: prompter,
		users:    users,
		recorder: recorder,
		opts:     opts,
	}
}

// Run migrates one project. Nothing is written to the destination before
// the operator confirms; ErrCanceled is returned when they decline.
func (m *Migrator) Run(ctx context.Context) (result *Result, err error) {
	result = &Result{}
	log := NewFollowUpLog(func(entry string) {
		if err := m.recorder.RecordFollowUp(entry); err != nil {
			logger.Warn("Failed to record follow-up", "error", err)
		}
	})
	defer func() {
		result.FollowUps = log.Entries()
	}()

	project, err := m.selectProject(ctx)
	if err != nil {
		return result, err
	}
	result.Project = project

	req, err := m.prompter.RepositoryRequest(SuggestRepositoryRequest(project))
	if err != nil {
		return result, err
	}
	ok, err := m.prompter.ConfirmMigration(project, req)
	if err != nil {
		return result, err
	}
	if !ok {
		return result, ErrCanceled
	}
	if err := m.recorder.Start(); err != nil {
		logger.Warn("Failed to start run journal", "error", err)
	}
	defer func() {
		if ferr := m.recorder.Finish(err); ferr != nil {
			logger.Warn("Failed to finish run journal", "error", ferr)
		}
	}()

	logger.Info("Creating repository", "owner", m.opts.GitHubOwner, "name", req.Name, "visibility", req.Visibility())
	repo, err := m.target.CreateRepository(ctx, m.opts.GitHubOwner, req)
	if err != nil {
		return result, platformError(PlatformGitHub, err)
	}
	result.Repository = repo
	if err := m.recorder.RecordRepository(project, repo); err != nil {
		logger.Warn("Failed to record repository", "error", err)
	}
	logger.Info("Created repository", "repo", repo.FullName, "url", repo.HTMLURL)

	logger.Info("Migrating git history", "from", project.PathWithNamespace, "to", repo.FullName)
	localPath, err := m.mirror.Fetch(ctx, project)
	if err != nil {
		return result, fmt.Errorf("failed to mirror git history: %w", err)
	}
	if err := m.mirror.Push(ctx, repo, localPath); err != nil {
		return result, fmt.Errorf("failed to push git history: %w", err)
	}
	logger.Info("Migrated git history", "repo", repo.FullName)

	usernames, err := m.source.ListCollaboratorUsernames(ctx, project)
	if err != nil {
		return result, platformError(PlatformGitLab, err)
	}
	var milestones []model.Milestone
	var issues []model.Issue
	if project.IssuesEnabled {
		if milestones, err = m.source.ListMilestones(ctx, project); err != nil {
			return result, platformError(PlatformGitLab, err)
		}
		if issues, err = m.source.ListIssues(ctx, project); err != nil {
			return result, platformError(PlatformGitLab, err)
		}
	} else {
		logger.Info("Issues are disabled on the GitLab project, skipping milestones and issues")
	}

	importer := NewImporter(m.target, m.users, log, m.recorder)

	logger.Info("Migrating users", "count", len(usernames))
	if result.Collaborators, err = importer.CreateCollaborators(ctx, repo, usernames); err != nil {
		return result, fmt.Errorf("failed to migrate collaborators: %w", err)
	}
	logger.Info("Migrated users", "added", result.Collaborators, "follow_ups", log.Len())

	logger.Info("Migrating milestones", "count", len(milestones))
	remap, err := importer.CreateMilestones(ctx, repo, milestones)
	result.Milestones = len(remap)
	if err != nil {
		return result, fmt.Errorf("failed to migrate milestones: %w", err)
	}
	logger.Info("Migrated milestones", "created", result.Milestones)

	logger.Info("Migrating issues", "count", len(issues))
	result.Issues, err = importer.CreateIssues(ctx, repo, issues, remap)
	if err != nil {
		return result, err
	}
	logger.Info("Migrated issues", "created", result.Issues)

	return result, nil
}

func (m *Migrator) selectProject(ctx context.Context) (model.Project, error) {
	if m.opts.GitLabProject != "" {
		project, err := m.source.GetProject(ctx, m.opts.GitLabProject)
		if err != nil {
			return model.Project{}, platformError(PlatformGitLab, err)
		}
		return project, nil
	}

	groups, err := m.source.ListGroups(ctx)
	if err != nil {
		return model.Project{}, platformError(PlatformGitLab, err)
	}
	group, err := m.prompter.SelectGroup(groups)
	if err != nil {
		return model.Project{}, err
	}
	projects, err := m.source.ListGroupProjects(ctx, group.ID)
	if err != nil {
		return model.Project{}, platformError(PlatformGitLab, err)
	}
	return m.prompter.SelectProject(projects)
}
