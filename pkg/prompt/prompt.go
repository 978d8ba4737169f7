// Package prompt collects the operator decisions a migration needs: which
// project to migrate, how to name the destination and whether to go ahead.
package prompt

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/migration"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
)

// DefaultMaxAttempts bounds how often an invalid answer is asked again.
const DefaultMaxAttempts = 3

var (
	// ErrTooManyAttempts is returned when the operator keeps giving invalid answers.
	ErrTooManyAttempts = errors.New("too many invalid answers")
	// ErrNothingToSelect is returned when a selection prompt has no options.
	ErrNothingToSelect = errors.New("nothing to select")
)

// asker is the terminal boundary. Answers are not validated.
type asker interface {
	Select(title string, options []string) (int, error)
	Input(title, value string) (string, error)
	Confirm(title string, value bool) (bool, error)
}

// Interactive asks every question on the terminal.
type Interactive struct {
	ask         asker
	out         io.Writer
	repoName    string
	private     bool
	maxAttempts int
}

// NewInteractive returns an Interactive prompter writing summaries to out.
// repoName, when set, replaces the suggested repository name as the default
// answer; private is the default visibility answer.
func NewInteractive(out io.Writer, repoName string, private, accessible bool) *Interactive {
	return &Interactive{
		ask:         &huhAsker{accessible: accessible},
		out:         out,
		repoName:    repoName,
		private:     private,
		maxAttempts: DefaultMaxAttempts,
	}
}

func (p *Interactive) SelectGroup(groups []model.Group) (model.Group, error) {
	if len(groups) == 0 {
		return model.Group{}, fmt.Errorf("no GitLab groups visible to the token: %w", ErrNothingToSelect)
	}
	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.FullPath
	}
	i, err := p.ask.Select("Select a GitLab group", labels)
	if err != nil {
		return model.Group{}, canceled(err)
	}
	return groups[i], nil
}

func (p *Interactive) SelectProject(projects []model.Project) (model.Project, error) {
	if len(projects) == 0 {
		return model.Project{}, fmt.Errorf("the group has no projects: %w", ErrNothingToSelect)
	}
	labels := make([]string, len(projects))
	for i, proj := range projects {
		labels[i] = proj.PathWithNamespace
	}
	i, err := p.ask.Select("Select a GitLab project", labels)
	if err != nil {
		return model.Project{}, canceled(err)
	}
	return projects[i], nil
}

func (p *Interactive) RepositoryRequest(suggested model.NewRepositoryRequest) (model.NewRepositoryRequest, error) {
	req := suggested
	if p.repoName != "" {
		req.Name = p.repoName
	}

	name := req.Name
	for attempt := 1; ; attempt++ {
		answer, err := p.ask.Input("GitHub repository name", name)
		if err != nil {
			return req, canceled(err)
		}
		verr := migration.ValidateRepositoryName(answer)
		if verr == nil {
			req.Name = answer
			break
		}
		if attempt >= p.maxAttempts {
			return req, fmt.Errorf("%w: %v", ErrTooManyAttempts, verr)
		}
		logger.Warn("Invalid repository name, try again", "name", answer, "error", verr)
		fmt.Fprintln(p.out, verr)
	}

	private, err := p.ask.Confirm("Create the repository as private?", p.private)
	if err != nil {
		return req, canceled(err)
	}
	req.Private = private
	return req, nil
}

func (p *Interactive) ConfirmMigration(project model.Project, req model.NewRepositoryRequest) (bool, error) {
	fmt.Fprintf(p.out, "GitLab project:    %s (%s)\n", project.PathWithNamespace, project.WebURL)
	fmt.Fprintf(p.out, "GitHub repository: %s (%s)\n", req.Name, req.Visibility())
	ok, err := p.ask.Confirm("Start the migration?", false)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func canceled(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return migration.ErrCanceled
	}
	return err
}

type huhAsker struct {
	accessible bool
}

func (a *huhAsker) run(field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).
		WithAccessible(a.accessible).
		Run()
}

func (a *huhAsker) Select(title string, options []string) (int, error) {
	opts := make([]huh.Option[int], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, i)
	}
	var selected int
	err := a.run(huh.NewSelect[int]().
		Title(title).
		Options(opts...).
		Value(&selected))
	return selected, err
}

func (a *huhAsker) Input(title, value string) (string, error) {
	err := a.run(huh.NewInput().
		Title(title).
		Value(&value))
	return value, err
}

func (a *huhAsker) Confirm(title string, value bool) (bool, error) {
	err := a.run(huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value))
	return value, err
}
