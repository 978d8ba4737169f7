package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/krrrr38/gitlab-project-2-github/pkg/logger"
	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/krrrr38/gitlab-project-2-github/pkg/usermap"
)

// Importer translates source records and creates them on the destination.
// Every call is sequential; creation order follows the source ids.
type Importer struct {
	target   Target
	users    *usermap.Mapper
	log      *FollowUpLog
	recorder Recorder
}

// NewImporter returns an Importer that appends resolution gaps to log.
func NewImporter(target Target, users *usermap.Mapper, log *FollowUpLog, recorder Recorder) *Importer {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Importer{target: target, users: users, log: log, recorder: recorder}
}

// CreateCollaborators adds every source member that is not yet a
// collaborator. A failed add is logged for follow-up and does not stop the
// remaining ones. It returns the number of collaborators added.
func (im *Importer) CreateCollaborators(ctx context.Context, repo model.Repository, usernames []string) (int, error) {
	existing, err := im.target.ListCollaborators(ctx, repo)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(existing))
	for _, login := range existing {
		known[strings.ToLower(login)] = struct{}{}
	}

	added := 0
	for _, username := range usernames {
		login := im.users.Resolve(username)
		key := strings.ToLower(login)
		if _, ok := known[key]; ok {
			logger.Debug("Skipping existing collaborator", "login", login)
			continue
		}
		if err := im.target.AddCollaborator(ctx, repo, login); err != nil {
			logger.Warn("Failed to add collaborator", "gitlab", username, "github", login, "error", err)
			im.log.Addf("Add collaborator %s (GitLab user %s) to %s manually: %v", login, username, repo.HTMLURL, err)
			continue
		}
		known[key] = struct{}{}
		added++
	}
	return added, nil
}

// CreateMilestones creates milestones in ascending source id order and
// returns the source id to destination number table. Any failure is fatal.
func (im *Importer) CreateMilestones(ctx context.Context, repo model.Repository, milestones []model.Milestone) (model.MilestoneMap, error) {
	remap := make(model.MilestoneMap, len(milestones))
	for _, m := range model.SortMilestones(milestones) {
		number, err := im.target.CreateMilestone(ctx, repo, m)
		if err != nil {
			return remap, err
		}
		remap[m.SourceID] = number
		if err := im.recorder.RecordMilestone(m, number); err != nil {
			logger.Warn("Failed to record milestone", "source_id", m.SourceID, "error", err)
		}
		logger.Debug("Created milestone", "title", m.Title, "source_id", m.SourceID, "number", number)
	}
	return remap, nil
}

// CreateIssues creates each issue with its comments and closes it when the
// source issue is closed. It returns the number of issues created.
func (im *Importer) CreateIssues(ctx context.Context, repo model.Repository, issues []model.Issue, milestones model.MilestoneMap) (int, error) {
	created := 0
	for _, issue := range model.SortIssues(issues) {
		select {
		case <-ctx.Done():
			return created, ctx.Err()
		default:
		}
		if err := im.createIssue(ctx, repo, issue, milestones); err != nil {
			return created, fmt.Errorf("failed to migrate issue #%d: %w", issue.ID, err)
		}
		created++
	}
	return created, nil
}

func (im *Importer) createIssue(ctx context.Context, repo model.Repository, issue model.Issue, milestones model.MilestoneMap) error {
	var direct, pending []string
	for _, login := range uniqueFold(im.users.ResolveAll(issue.Assignees)) {
		if strings.EqualFold(login, repo.Owner) {
			direct = append(direct, repo.Owner)
			continue
		}
		pending = append(pending, login)
	}

	req := model.NewIssue{
		Title:     issue.Title,
		Body:      ComposeIssueBody(issue, im.users),
		Labels:    issue.Labels,
		Assignees: direct,
	}
	if issue.MilestoneID != nil {
		number, ok := milestones[*issue.MilestoneID]
		if !ok {
			return fmt.Errorf("milestone %d: %w", *issue.MilestoneID, ErrUnknownMilestone)
		}
		req.Milestone = &number
	}

	createdIssue, err := im.target.CreateIssue(ctx, repo, req)
	if err != nil {
		return err
	}
	if err := im.recorder.RecordIssue(issue, createdIssue); err != nil {
		logger.Warn("Failed to record issue", "id", issue.ID, "error", err)
	}
	logger.Info("Created GitHub issue", "number", createdIssue.Number, "url", createdIssue.HTMLURL, "gitlab", issue.WebURL)

	for _, login := range pending {
		im.log.Addf("Assign %s to %s", login, createdIssue.HTMLURL)
	}

	for _, c := range issue.UserComments() {
		if err := im.target.CreateComment(ctx, repo, createdIssue.Number, ComposeCommentBody(c, im.users)); err != nil {
			return err
		}
	}

	if issue.Closed {
		if err := im.target.CloseIssue(ctx, repo, createdIssue.Number); err != nil {
			return err
		}
	}
	return nil
}

func uniqueFold(logins []string) []string {
	seen := make(map[string]struct{}, len(logins))
	var ret []string
	for _, login := range logins {
		key := strings.ToLower(login)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ret = append(ret, login)
	}
	return ret
}
