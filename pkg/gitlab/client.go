package gitlab

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/xanzy/go-gitlab"
)

const perPage = 100

// Connector reads a project and its issue tracker from GitLab.
type Connector struct {
	client *gitlab.Client
}

// NewConnector creates a Connector for the GitLab instance at baseURL.
func NewConnector(token, baseURL string) (*Connector, error) {
	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &Connector{client: client}, nil
}

// ListGroups returns every group visible to the token.
func (c *Connector) ListGroups(ctx context.Context) ([]model.Group, error) {
	var ret []model.Group
	opts := &gitlab.ListGroupsOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage, Page: 1},
	}
	for {
		groups, resp, err := c.client.Groups.ListGroups(opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list GitLab groups: %w", withAccessDenied(err))
		}
		for _, g := range groups {
			ret = append(ret, model.Group{ID: g.ID, Name: g.Name, FullPath: g.FullPath})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return ret, nil
}

// ListGroupProjects returns the projects of a group.
func (c *Connector) ListGroupProjects(ctx context.Context, groupID int) ([]model.Project, error) {
	var ret []model.Project
	opts := &gitlab.ListGroupProjectsOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage, Page: 1},
	}
	for {
		projects, resp, err := c.client.Groups.ListGroupProjects(groupID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list projects of group %d: %w", groupID, withAccessDenied(err))
		}
		for _, p := range projects {
			ret = append(ret, toProject(p))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return ret, nil
}

// GetProject resolves a project by numeric id or "namespace/path".
func (c *Connector) GetProject(ctx context.Context, idOrPath string) (model.Project, error) {
	p, _, err := c.client.Projects.GetProject(idOrPath, nil, gitlab.WithContext(ctx))
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to get GitLab project %s: %w", idOrPath, withAccessDenied(err))
	}
	return toProject(p), nil
}

// ListCollaboratorUsernames returns the usernames of all project members,
// inherited members included.
func (c *Connector) ListCollaboratorUsernames(ctx context.Context, project model.Project) ([]string, error) {
	var ret []string
	seen := make(map[string]struct{})
	opts := &gitlab.ListProjectMembersOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage, Page: 1},
	}
	for {
		members, resp, err := c.client.ProjectMembers.ListAllProjectMembers(project.ID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list members of project %d: %w", project.ID, withAccessDenied(err))
		}
		for _, m := range members {
			if _, ok := seen[m.Username]; ok {
				continue
			}
			seen[m.Username] = struct{}{}
			ret = append(ret, m.Username)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	logger.Debug("Fetched GitLab project members", "project", project.PathWithNamespace, "count", len(ret))
	return ret, nil
}

// ListMilestones returns open and closed milestones of the project.
func (c *Connector) ListMilestones(ctx context.Context, project model.Project) ([]model.Milestone, error) {
	var ret []model.Milestone
	opts := &gitlab.ListMilestonesOptions{
		// group milestones can be referenced by project issues
		IncludeParentMilestones: gitlab.Bool(true),
		ListOptions:             gitlab.ListOptions{PerPage: perPage, Page: 1},
	}
	for {
		milestones, resp, err := c.client.Milestones.ListMilestones(project.ID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list milestones of project %d: %w", project.ID, withAccessDenied(err))
		}
		for _, m := range milestones {
			ret = append(ret, model.Milestone{
				SourceID:    m.ID,
				Title:       m.Title,
				Description: m.Description,
				Closed:      m.State == "closed",
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	logger.Debug("Fetched GitLab milestones", "project", project.PathWithNamespace, "count", len(ret))
	return model.SortMilestones(ret), nil
}

// ListIssues returns open and closed issues, each with all of its notes.
func (c *Connector) ListIssues(ctx context.Context, project model.Project) ([]model.Issue, error) {
	var ret []model.Issue
	opts := &gitlab.ListProjectIssuesOptions{
		State:       gitlab.String("all"),
		OrderBy:     gitlab.String("created_at"),
		Sort:        gitlab.String("asc"),
		ListOptions: gitlab.ListOptions{PerPage: perPage, Page: 1},
	}
	for {
		issues, resp, err := c.client.Issues.ListProjectIssues(project.ID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list issues of project %d: %w", project.ID, withAccessDenied(err))
		}
		for _, i := range issues {
			issue := toIssue(i)
			comments, err := c.listIssueNotes(ctx, project.ID, i.IID)
			if err != nil {
				return nil, err
			}
			issue.Comments = comments
			ret = append(ret, issue)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	logger.Debug("Fetched GitLab issues", "project", project.PathWithNamespace, "count", len(ret))
	return model.SortIssues(ret), nil
}

func (c *Connector) listIssueNotes(ctx context.Context, projectID, issueIID int) ([]model.Comment, error) {
	var ret []model.Comment
	opts := &gitlab.ListIssueNotesOptions{
		OrderBy:     gitlab.String("created_at"),
		Sort:        gitlab.String("asc"),
		ListOptions: gitlab.ListOptions{PerPage: perPage, Page: 1},
	}
	for {
		notes, resp, err := c.client.Notes.ListIssueNotes(projectID, issueIID, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to list notes of issue %d: %w", issueIID, withAccessDenied(err))
		}
		for _, n := range notes {
			ret = append(ret, toComment(n))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return ret, nil
}

// withAccessDenied tags responses rejecting the token with model.ErrAccessDenied.
func withAccessDenied(err error) error {
	var errResp *gitlab.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", model.ErrAccessDenied, err)
		}
	}
	return err
}
