package prompt

import (
	"errors"

	"github.com/krrrr38/gitlab-project-2-github/pkg/migration"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
)

var errNeedsProject = errors.New("--gitlab-project is required when prompts are disabled")

// Unattended answers every prompt from command line flags.
type Unattended struct {
	RepoName string
	Private  bool
}

func (u *Unattended) SelectGroup([]model.Group) (model.Group, error) {
	return model.Group{}, errNeedsProject
}

func (u *Unattended) SelectProject([]model.Project) (model.Project, error) {
	return model.Project{}, errNeedsProject
}

func (u *Unattended) RepositoryRequest(suggested model.NewRepositoryRequest) (model.NewRepositoryRequest, error) {
	req := suggested
	if u.RepoName != "" {
		req.Name = u.RepoName
	}
	req.Private = u.Private
	if err := migration.ValidateRepositoryName(req.Name); err != nil {
		return req, err
	}
	return req, nil
}

func (u *Unattended) ConfirmMigration(model.Project, model.NewRepositoryRequest) (bool, error) {
	return true, nil
}
