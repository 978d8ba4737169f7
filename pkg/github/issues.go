package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v70/github"
	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/krrrr38/gitlab-project-2-github/pkg/utils"
)

// Creation calls below are not retried: a POST that failed after reaching
// GitHub may still have created the item, and a duplicate would shift the
// issue numbering.

// CreateMilestone creates a milestone and returns its number.
func (client *Client) CreateMilestone(ctx context.Context, repo model.Repository, milestone model.Milestone) (int, error) {
	if err := client.pace(ctx); err != nil {
		return 0, err
	}
	state := "open"
	if milestone.Closed {
		state = "closed"
	}
	created, _, err := client.GetInner().Issues.CreateMilestone(ctx, repo.Owner, repo.Name, &github.Milestone{
		Title:       github.Ptr(milestone.Title),
		Description: github.Ptr(milestone.Description),
		State:       github.Ptr(state),
	})
	if err != nil {
		logger.Error("Failed to create milestone", "repo", repo.FullName, "title", milestone.Title, "error", err)
		return 0, fmt.Errorf("failed to create milestone %q: %w", milestone.Title, err)
	}
	return created.GetNumber(), nil
}

// CreateIssue creates an issue.
func (client *Client) CreateIssue(ctx context.Context, repo model.Repository, issue model.NewIssue) (model.CreatedIssue, error) {
	logger.Debug("Creating GitHub issue",
		"repo", repo.FullName,
		"title", issue.Title,
		"labels", issue.Labels,
		"assignees", issue.Assignees)

	if err := client.pace(ctx); err != nil {
		return model.CreatedIssue{}, err
	}
	labels := append([]string{}, issue.Labels...)
	assignees := append([]string{}, issue.Assignees...)
	req := &github.IssueRequest{
		Title:     github.Ptr(utils.TruncateText(issue.Title, utils.MaxIssueTitleLength)),
		Body:      github.Ptr(utils.TruncateText(issue.Body, utils.MaxIssueBodyLength)),
		Labels:    &labels,
		Assignees: &assignees,
		Milestone: issue.Milestone,
	}
	created, _, err := client.GetInner().Issues.Create(ctx, repo.Owner, repo.Name, req)
	if err != nil {
		logger.Error("Failed to create GitHub issue", "repo", repo.FullName, "title", issue.Title, "error", err)
		return model.CreatedIssue{}, fmt.Errorf("failed to create GitHub issue: %w", err)
	}
	return model.CreatedIssue{Number: created.GetNumber(), HTMLURL: created.GetHTMLURL()}, nil
}

// CreateComment adds a comment to an issue.
func (client *Client) CreateComment(ctx context.Context, repo model.Repository, number int, body string) error {
	if err := client.pace(ctx); err != nil {
		return err
	}
	truncatedBody := utils.TruncateText(body, utils.MaxCommentLength)
	_, resp, err := client.GetInner().Issues.CreateComment(ctx, repo.Owner, repo.Name, number,
		&github.IssueComment{Body: &truncatedBody})
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w, x-github-request-id: %s", err, resp.Header.Get("x-github-request-id"))
		}
		return fmt.Errorf("failed to create comment on issue #%d: %w", number, err)
	}
	return nil
}

// CloseIssue sets the state of an issue to closed.
func (client *Client) CloseIssue(ctx context.Context, repo model.Repository, number int) error {
	logger.Debug("Closing issue", "repo", repo.FullName, "number", number)

	err := RetryableOperation(ctx, func() error {
		_, _, err := client.GetInner().Issues.Edit(ctx, repo.Owner, repo.Name, number, &github.IssueRequest{
			State: github.Ptr("closed"),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to close issue #%d: %w", number, err)
	}
	return nil
}
