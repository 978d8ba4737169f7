package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
)

type fakeSource struct {
	groups     []model.Group
	projects   map[int][]model.Project
	project    model.Project
	members    []string
	milestones []model.Milestone
	issues     []model.Issue
	err        error
}

func (f *fakeSource) ListGroups(context.Context) ([]model.Group, error) {
	return f.groups, f.err
}

func (f *fakeSource) ListGroupProjects(_ context.Context, groupID int) ([]model.Project, error) {
	return f.projects[groupID], f.err
}

func (f *fakeSource) GetProject(context.Context, string) (model.Project, error) {
	return f.project, f.err
}

func (f *fakeSource) ListCollaboratorUsernames(context.Context, model.Project) ([]string, error) {
	return f.members, nil
}

func (f *fakeSource) ListMilestones(context.Context, model.Project) ([]model.Milestone, error) {
	return f.milestones, nil
}

func (f *fakeSource) ListIssues(context.Context, model.Project) ([]model.Issue, error) {
	return f.issues, nil
}

type createdComment struct {
	Number int
	Body   string
}

type fakeTarget struct {
	calls         []string
	collaborators []string
	failAdd       map[string]bool
	milestones    []model.Milestone
	issues        []model.NewIssue
	comments      []createdComment
	closed        []int
	createRepoErr error
	milestoneErr  error
	nextNumber    int
}

func (f *fakeTarget) CreateRepository(_ context.Context, owner string, req model.NewRepositoryRequest) (model.Repository, error) {
	f.calls = append(f.calls, "CreateRepository")
	if f.createRepoErr != nil {
		return model.Repository{}, f.createRepoErr
	}
	if owner == "" {
		owner = "me"
	}
	return model.Repository{
		ID:       1,
		Owner:    owner,
		Name:     req.Name,
		FullName: owner + "/" + req.Name,
		HTMLURL:  "https://github.com/" + owner + "/" + req.Name,
		CloneURL: "https://github.com/" + owner + "/" + req.Name + ".git",
	}, nil
}

func (f *fakeTarget) ListCollaborators(context.Context, model.Repository) ([]string, error) {
	f.calls = append(f.calls, "ListCollaborators")
	return append([]string(nil), f.collaborators...), nil
}

func (f *fakeTarget) AddCollaborator(_ context.Context, _ model.Repository, login string) error {
	f.calls = append(f.calls, "AddCollaborator:"+login)
	if f.failAdd[login] {
		return errors.New("404 Not Found")
	}
	f.collaborators = append(f.collaborators, login)
	return nil
}

func (f *fakeTarget) CreateMilestone(_ context.Context, _ model.Repository, m model.Milestone) (int, error) {
	f.calls = append(f.calls, "CreateMilestone")
	if f.milestoneErr != nil {
		return 0, f.milestoneErr
	}
	f.milestones = append(f.milestones, m)
	return len(f.milestones) + 100, nil
}

func (f *fakeTarget) CreateIssue(_ context.Context, repo model.Repository, issue model.NewIssue) (model.CreatedIssue, error) {
	f.calls = append(f.calls, "CreateIssue")
	f.issues = append(f.issues, issue)
	f.nextNumber++
	return model.CreatedIssue{
		Number:  f.nextNumber,
		HTMLURL: fmt.Sprintf("%s/issues/%d", repo.HTMLURL, f.nextNumber),
	}, nil
}

func (f *fakeTarget) CreateComment(_ context.Context, _ model.Repository, number int, body string) error {
	f.calls = append(f.calls, "CreateComment")
	f.comments = append(f.comments, createdComment{Number: number, Body: body})
	return nil
}

func (f *fakeTarget) CloseIssue(_ context.Context, _ model.Repository, number int) error {
	f.calls = append(f.calls, "CloseIssue")
	f.closed = append(f.closed, number)
	return nil
}

type fakeMirror struct {
	fetched bool
	pushed  bool
}

func (f *fakeMirror) Fetch(context.Context, model.Project) (string, error) {
	f.fetched = true
	return "/tmp/mirror.git", nil
}

func (f *fakeMirror) Push(context.Context, model.Repository, string) error {
	f.pushed = true
	return nil
}

type fakePrompter struct {
	confirm  bool
	override string
	asked    []string
}

func (f *fakePrompter) SelectGroup(groups []model.Group) (model.Group, error) {
	f.asked = append(f.asked, "group")
	return groups[0], nil
}

func (f *fakePrompter) SelectProject(projects []model.Project) (model.Project, error) {
	f.asked = append(f.asked, "project")
	return projects[0], nil
}

func (f *fakePrompter) RepositoryRequest(suggested model.NewRepositoryRequest) (model.NewRepositoryRequest, error) {
	f.asked = append(f.asked, "repository")
	if f.override != "" {
		suggested.Name = f.override
	}
	return suggested, nil
}

func (f *fakePrompter) ConfirmMigration(model.Project, model.NewRepositoryRequest) (bool, error) {
	f.asked = append(f.asked, "confirm")
	return f.confirm, nil
}

type fakeRecorder struct {
	started    bool
	milestones map[int]int
	issues     map[int]int
	followUps  []string
	finished   bool
	finishErr  error
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{milestones: map[int]int{}, issues: map[int]int{}}
}

func (f *fakeRecorder) Start() error {
	f.started = true
	return nil
}

func (f *fakeRecorder) RecordRepository(model.Project, model.Repository) error { return nil }

func (f *fakeRecorder) RecordMilestone(m model.Milestone, number int) error {
	f.milestones[m.SourceID] = number
	return nil
}

func (f *fakeRecorder) RecordIssue(issue model.Issue, created model.CreatedIssue) error {
	f.issues[issue.ID] = created.Number
	return nil
}

func (f *fakeRecorder) RecordFollowUp(entry string) error {
	f.followUps = append(f.followUps, entry)
	return nil
}

func (f *fakeRecorder) Finish(runErr error) error {
	f.finished = true
	f.finishErr = runErr
	return nil
}
