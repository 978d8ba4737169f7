package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v70/github"
	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
)

// ListCollaborators returns the logins of current collaborators and of users
// with a pending invitation. Invitations count because AddCollaborator only
// invites.
func (client *Client) ListCollaborators(ctx context.Context, repo model.Repository) ([]string, error) {
	var logins []string

	opts := &github.ListCollaboratorsOptions{
		Affiliation: "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		var users []*github.User
		var resp *github.Response
		err := RetryableOperation(ctx, func() error {
			var err error
			users, resp, err = client.GetInner().Repositories.ListCollaborators(ctx, repo.Owner, repo.Name, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list collaborators: %w", err)
		}
		for _, u := range users {
			logins = append(logins, u.GetLogin())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	listOpts := &github.ListOptions{PerPage: 100}
	for {
		var invitations []*github.RepositoryInvitation
		var resp *github.Response
		err := RetryableOperation(ctx, func() error {
			var err error
			invitations, resp, err = client.GetInner().Repositories.ListInvitations(ctx, repo.Owner, repo.Name, listOpts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list invitations: %w", err)
		}
		for _, inv := range invitations {
			if inv.GetInvitee() != nil {
				logins = append(logins, inv.GetInvitee().GetLogin())
			}
		}
		if resp.NextPage == 0 {
			break
		}
		listOpts.Page = resp.NextPage
	}

	return logins, nil
}

// AddCollaborator invites login to the repository with push permission.
func (client *Client) AddCollaborator(ctx context.Context, repo model.Repository, login string) error {
	logger.Debug("Adding collaborator", "repo", repo.FullName, "login", login)

	err := RetryableOperation(ctx, func() error {
		_, _, err := client.GetInner().Repositories.AddCollaborator(ctx, repo.Owner, repo.Name, login,
			&github.RepositoryAddCollaboratorOptions{Permission: "push"})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add collaborator %s: %w", login, err)
	}
	return nil
}
