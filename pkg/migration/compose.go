package migration

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/krrrr38/gitlab-project-2-github/pkg/usermap"
	"github.com/krrrr38/gitlab-project-2-github/pkg/utils"
)

var repositoryNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// SuggestRepositoryRequest derives the default destination repository from
// the source project.
func SuggestRepositoryRequest(project model.Project) model.NewRepositoryRequest {
	return model.NewRepositoryRequest{
		Name:        SuggestRepositoryName(project),
		Private:     true,
		Description: project.Description,
		Homepage:    project.WebURL,
	}
}

// SuggestRepositoryName joins the namespace and project names with "_",
// both stripped of whitespace.
func SuggestRepositoryName(project model.Project) string {
	return utils.StripWhitespace(project.NamespaceName) + "_" + utils.StripWhitespace(project.Name)
}

// ValidateRepositoryName rejects names GitHub would refuse or rewrite.
func ValidateRepositoryName(name string) error {
	if name == "." || name == ".." || !repositoryNamePattern.MatchString(name) {
		return fmt.Errorf("invalid repository name %q: use letters, digits, '.', '-' or '_'", name)
	}
	return nil
}

// ComposeIssueBody renders the description, a provenance footer and the
// history of system notes.
func ComposeIssueBody(issue model.Issue, users *usermap.Mapper) string {
	var b strings.Builder
	if issue.Description != "" {
		b.WriteString(issue.Description)
		b.WriteString("\n\n")
	}
	b.WriteString("---\n")
	b.WriteString(provenance(issue.WebURL))
	fmt.Fprintf(&b, "by `%s` at `%s`\n", users.Resolve(issue.Author), formatTimestamp(issue.CreatedAt))

	history := issue.SystemComments()
	if len(history) > 0 {
		b.WriteString("\n### Issue History\n\n")
		for _, c := range history {
			fmt.Fprintf(&b, "- %s (`%s`): %s at `%s`\n",
				c.AuthorName, users.Resolve(c.Author), singleLine(c.Body), formatTimestamp(c.CreatedAt))
		}
	}
	return b.String()
}

// ComposeCommentBody renders a user note with its provenance.
func ComposeCommentBody(comment model.Comment, users *usermap.Mapper) string {
	var b strings.Builder
	b.WriteString(comment.Body)
	b.WriteString("\n\n---\n")
	b.WriteString(provenance(""))
	fmt.Fprintf(&b, "by %s (`%s`) at `%s`\n", comment.AuthorName, users.Resolve(comment.Author), formatTimestamp(comment.CreatedAt))
	return b.String()
}

func provenance(webURL string) string {
	if webURL == "" {
		return "Imported from " + PlatformGitLab + "\n"
	}
	return fmt.Sprintf("Imported from %s: %s\n", PlatformGitLab, webURL)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(utils.TimestampLayout)
}

// history entries are bullet items and must stay on one line
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
