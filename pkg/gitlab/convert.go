package gitlab

import (
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/xanzy/go-gitlab"
)

func toProject(p *gitlab.Project) model.Project {
	project := model.Project{
		ID:                p.ID,
		Name:              p.Name,
		Path:              p.Path,
		PathWithNamespace: p.PathWithNamespace,
		Description:       p.Description,
		IssuesEnabled:     p.IssuesEnabled,
		WebURL:            p.WebURL,
		CloneURL:          p.HTTPURLToRepo,
	}
	if p.Namespace != nil {
		project.NamespaceName = p.Namespace.Name
	}
	return project
}

func toIssue(i *gitlab.Issue) model.Issue {
	issue := model.Issue{
		ID:          i.IID,
		Title:       i.Title,
		Description: i.Description,
		Closed:      i.State == "closed",
		Labels:      append([]string(nil), i.Labels...),
		WebURL:      i.WebURL,
	}
	if i.Author != nil {
		issue.Author = i.Author.Username
	}
	if i.CreatedAt != nil {
		issue.CreatedAt = *i.CreatedAt
	}
	for _, a := range i.Assignees {
		if a != nil {
			issue.Assignees = append(issue.Assignees, a.Username)
		}
	}
	if len(issue.Assignees) == 0 && i.Assignee != nil {
		issue.Assignees = append(issue.Assignees, i.Assignee.Username)
	}
	if i.Milestone != nil {
		id := i.Milestone.ID
		issue.MilestoneID = &id
	}
	return issue
}

func toComment(n *gitlab.Note) model.Comment {
	comment := model.Comment{
		ID:         n.ID,
		AuthorName: n.Author.Name,
		Author:     n.Author.Username,
		Body:       n.Body,
		System:     n.System,
	}
	if n.CreatedAt != nil {
		comment.CreatedAt = *n.CreatedAt
	}
	return comment
}
