package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/shurcooL/githubv4"
)

// CreateRepository creates an empty GitHub repository owned by owner, or by
// the authenticated account when owner is empty. It is a single attempt.
func (client *Client) CreateRepository(ctx context.Context, owner string, req model.NewRepositoryRequest) (model.Repository, error) {
	logger.Debug("Creating GitHub repository", "owner", owner, "repo", req.Name, "visibility", req.Visibility())

	ownerID, err := client.ownerNodeID(ctx, owner)
	if err != nil {
		return model.Repository{}, err
	}

	var mutation struct {
		CreateRepository struct {
			Repository struct {
				DatabaseID    githubv4.Int
				Name          githubv4.String
				NameWithOwner githubv4.String
				URL           githubv4.URI
				Owner         struct {
					Login githubv4.String
				}
			}
		} `graphql:"createRepository(input: $input)"`
	}
	visibility := githubv4.RepositoryVisibilityPublic
	if req.Private {
		visibility = githubv4.RepositoryVisibilityPrivate
	}
	input := githubv4.CreateRepositoryInput{
		Name:             githubv4.String(req.Name),
		Visibility:       visibility,
		OwnerID:          githubv4.NewID(ownerID),
		Description:      githubv4.NewString(githubv4.String(req.Description)),
		HasIssuesEnabled: githubv4.NewBoolean(true),
		HasWikiEnabled:   githubv4.NewBoolean(false),
	}
	if req.Homepage != "" {
		if u, err := url.Parse(req.Homepage); err == nil {
			input.HomepageURL = githubv4.NewURI(githubv4.URI{URL: u})
		}
	}

	if err := client.GetV4().Mutate(ctx, &mutation, input, nil); err != nil {
		logger.Error("Failed to create GitHub repository", "owner", owner, "repo", req.Name, "error", err)
		return model.Repository{}, fmt.Errorf("failed to create GitHub repository: %w", withAccessDenied(err))
	}

	created := mutation.CreateRepository.Repository
	htmlURL := ""
	if created.URL.URL != nil {
		htmlURL = created.URL.URL.String()
	}
	repo := model.Repository{
		ID:       int64(created.DatabaseID),
		Owner:    string(created.Owner.Login),
		Name:     string(created.Name),
		FullName: string(created.NameWithOwner),
		HTMLURL:  htmlURL,
		CloneURL: htmlURL + ".git",
	}
	logger.Debug("Successfully created GitHub repository", "repo", repo.FullName, "url", repo.HTMLURL)
	return repo, nil
}

func (client *Client) ownerNodeID(ctx context.Context, owner string) (string, error) {
	if owner != "" {
		var ownerNodeID string
		err := RetryableOperation(ctx, func() error {
			ownerDetail, _, err := client.GetInner().Users.Get(ctx, owner)
			if err != nil {
				return err
			}
			ownerNodeID = ownerDetail.GetNodeID()
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to get owner detail: %w", withAccessDenied(err))
		}
		return ownerNodeID, nil
	}

	var query struct {
		Viewer struct {
			ID    githubv4.ID
			Login githubv4.String
		}
	}
	if err := client.GetV4().Query(ctx, &query, nil); err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", withAccessDenied(err))
	}
	id, ok := query.Viewer.ID.(string)
	if !ok {
		return "", fmt.Errorf("unexpected viewer id %v", query.Viewer.ID)
	}
	return id, nil
}
