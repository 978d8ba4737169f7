package migration

import (
	"context"

	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
)

// Source reads the project to migrate.
type Source interface {
	ListGroups(ctx context.Context) ([]model.Group, error)
	ListGroupProjects(ctx context.Context, groupID int) ([]model.Project, error)
	GetProject(ctx context.Context, idOrPath string) (model.Project, error)
	ListCollaboratorUsernames(ctx context.Context, project model.Project) ([]string, error)
	ListMilestones(ctx context.Context, project model.Project) ([]model.Milestone, error)
	ListIssues(ctx context.Context, project model.Project) ([]model.Issue, error)
}

// Target writes the migrated project.
type Target interface {
	CreateRepository(ctx context.Context, owner string, req model.NewRepositoryRequest) (model.Repository, error)
	ListCollaborators(ctx context.Context, repo model.Repository) ([]string, error)
	AddCollaborator(ctx context.Context, repo model.Repository, login string) error
	CreateMilestone(ctx context.Context, repo model.Repository, milestone model.Milestone) (int, error)
	CreateIssue(ctx context.Context, repo model.Repository, issue model.NewIssue) (model.CreatedIssue, error)
	CreateComment(ctx context.Context, repo model.Repository, number int, body string) error
	CloseIssue(ctx context.Context, repo model.Repository, number int) error
}

// Mirror copies every ref of the source repository into the destination.
type Mirror interface {
	Fetch(ctx context.Context, project model.Project) (string, error)
	Push(ctx context.Context, repo model.Repository, localPath string) error
}

// Prompter collects the operator decisions. Implementations return only
// validated answers.
type Prompter interface {
	SelectGroup(groups []model.Group) (model.Group, error)
	SelectProject(projects []model.Project) (model.Project, error)
	RepositoryRequest(suggested model.NewRepositoryRequest) (model.NewRepositoryRequest, error)
	ConfirmMigration(project model.Project, req model.NewRepositoryRequest) (bool, error)
}

// Recorder keeps a durable trace of the run. Start is called once the
// operator confirmed the migration; Finish follows every started run.
type Recorder interface {
	Start() error
	RecordRepository(project model.Project, repo model.Repository) error
	RecordMilestone(milestone model.Milestone, number int) error
	RecordIssue(issue model.Issue, created model.CreatedIssue) error
	RecordFollowUp(entry string) error
	Finish(runErr error) error
}

type nopRecorder struct{}

func (nopRecorder) Start() error                                           { return nil }
func (nopRecorder) RecordRepository(model.Project, model.Repository) error { return nil }
func (nopRecorder) RecordMilestone(model.Milestone, int) error             { return nil }
func (nopRecorder) RecordIssue(model.Issue, model.CreatedIssue) error      { return nil }
func (nopRecorder) RecordFollowUp(string) error                            { return nil }
func (nopRecorder) Finish(error) error                                     { return nil }
