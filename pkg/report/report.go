// Package report prints the end of run summary.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/krrrr38/gitlab-project-2-github/pkg/migration"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#A8A8A8"})
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C98300", Dark: "#FFB454"})
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#57D68D"})
)

// ImageReminder tells the operator that attachments were not copied.
const ImageReminder = "Images and attachments were not migrated. Search the GitHub repository for " +
	"`![` and `/uploads/` and re-upload the referenced files."

// Render writes the summary of result.
func Render(w io.Writer, result *migration.Result) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Migration summary"))
	b.WriteString("\n\n")
	row(&b, "GitLab", result.SourceURL())
	row(&b, "GitHub", result.TargetURL())
	row(&b, "Collaborators added", fmt.Sprint(result.Collaborators))
	row(&b, "Milestones created", fmt.Sprint(result.Milestones))
	row(&b, "Issues created", fmt.Sprint(result.Issues))
	b.WriteString("\n")

	if len(result.FollowUps) == 0 {
		b.WriteString(passStyle.Render("Nothing to follow up."))
		b.WriteString("\n")
	} else {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Follow up manually (%d)", len(result.FollowUps))))
		b.WriteString("\n")
		for _, entry := range result.FollowUps {
			b.WriteString("  - ")
			b.WriteString(entry)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(warnStyle.Render(ImageReminder))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func row(b *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-20s", label+":")), value)
}
