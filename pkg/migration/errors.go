package migration

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
)

const (
	PlatformGitLab = "GitLab"
	PlatformGitHub = "GitHub"
)

var (
	// ErrUnknownMilestone means an issue references a milestone that was not
	// created on the destination.
	ErrUnknownMilestone = errors.New("issue references a milestone missing from the remap table")
	// ErrCanceled means the operator declined the migration.
	ErrCanceled = errors.New("migration canceled")
)

// ConnectivityError reports that one of the platforms could not be reached.
type ConnectivityError struct {
	Platform string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("failed to reach %s: %v", e.Platform, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// platformError reports transport failures and rejected credentials as a
// ConnectivityError. Other errors are returned as is.
func platformError(platform string, err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, model.ErrAccessDenied) {
		return &ConnectivityError{Platform: platform, Err: err}
	}
	return err
}
