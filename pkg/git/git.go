package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/krrrr38/gitlab-project-2-github/pkg/utils"
)

const (
	SourceRemote = "gitlab"
	TargetRemote = "github"
)

// MirrorRefSpec copies every reference, not only branches and tags.
var MirrorRefSpec = config.RefSpec("+refs/*:refs/*")

// TokenFunc returns the password used for HTTP basic auth. Tokens of GitHub
// Apps expire, so they are requested right before use.
type TokenFunc func(ctx context.Context) (string, error)

// StaticToken wraps a fixed token.
func StaticToken(token string) TokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

type Git struct {
	workingDir  string
	sourceUser  string
	sourceToken TokenFunc
	targetUser  string
	targetToken TokenFunc
}

func NewGit(workingDir string, sourceToken, targetToken TokenFunc) *Git {
	return &Git{
		workingDir:  workingDir,
		sourceUser:  "oauth2",
		sourceToken: sourceToken,
		targetUser:  "x-access-token",
		targetToken: targetToken,
	}
}

// Fetch mirrors every ref of the source project into a fresh bare repository
// below the working directory and returns its path. Anything already at that
// path is removed first.
func (g *Git) Fetch(ctx context.Context, project model.Project) (string, error) {
	path := filepath.Join(g.workingDir, project.Path+".git")
	if err := utils.ForceRemoveAll(path); err != nil {
		return "", err
	}
	logger.Debug("Mirroring GitLab repository", "url", project.CloneURL, "path", path)

	repo, err := gogit.PlainInit(path, true)
	if err != nil {
		return "", fmt.Errorf("failed to init bare repository: %w", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name:   SourceRemote,
		URLs:   []string{project.CloneURL},
		Fetch:  []config.RefSpec{MirrorRefSpec},
		Mirror: true,
	}); err != nil {
		return "", fmt.Errorf("failed to add GitLab remote: %w", err)
	}

	auth, err := basicAuth(ctx, g.sourceUser, g.sourceToken)
	if err != nil {
		return "", err
	}
	err = repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: SourceRemote,
		RefSpecs:   []config.RefSpec{MirrorRefSpec},
		Tags:       gogit.AllTags,
		Force:      true,
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) && !errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return "", fmt.Errorf("failed to fetch from GitLab: %w", err)
	}
	return path, nil
}

// Push force-pushes every local ref of the mirror at localPath to the
// destination repository. An existing remote of the same name is replaced,
// so Push can run again on the same mirror.
func (g *Git) Push(ctx context.Context, repository model.Repository, localPath string) error {
	repo, err := gogit.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("failed to open mirror %s: %w", localPath, err)
	}
	if err := repo.DeleteRemote(TargetRemote); err != nil && !errors.Is(err, gogit.ErrRemoteNotFound) {
		return fmt.Errorf("failed to remove existing GitHub remote: %w", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name:   TargetRemote,
		URLs:   []string{repository.CloneURL},
		Fetch:  []config.RefSpec{MirrorRefSpec},
		Mirror: true,
	}); err != nil {
		return fmt.Errorf("failed to add GitHub remote: %w", err)
	}

	auth, err := basicAuth(ctx, g.targetUser, g.targetToken)
	if err != nil {
		return err
	}
	logger.Debug("Pushing mirror to GitHub", "url", repository.CloneURL, "path", localPath)
	err = repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: TargetRemote,
		RefSpecs:   []config.RefSpec{MirrorRefSpec},
		Force:      true,
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push mirror to GitHub: %w", err)
	}
	return nil
}

func basicAuth(ctx context.Context, user string, token TokenFunc) (transport.AuthMethod, error) {
	if token == nil {
		return nil, nil
	}
	password, err := token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get git credentials: %w", err)
	}
	if password == "" {
		return nil, nil
	}
	return &http.BasicAuth{Username: user, Password: password}, nil
}
