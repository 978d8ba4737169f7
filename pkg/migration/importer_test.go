package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/krrrr38/gitlab-project-2-github/pkg/usermap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var importRepo = model.Repository{
	Owner:    "acme-owner",
	Name:     "team_web",
	FullName: "acme-owner/team_web",
	HTMLURL:  "https://github.com/acme-owner/team_web",
}

func intPtr(i int) *int { return &i }

func TestCreateCollaboratorsIsolatesFailures(t *testing.T) {
	target := &fakeTarget{failAdd: map[string]bool{"ghost": true, "nobody-gh": true}}
	log := NewFollowUpLog(nil)
	im := NewImporter(target, usermap.New(map[string]string{"nobody": "nobody-gh"}), log, nil)

	added, err := im.CreateCollaborators(context.Background(), importRepo, []string{"ghost", "alice", "nobody", "bob"})
	require.NoError(t, err)

	assert.Equal(t, 2, added)
	assert.Equal(t, []string{
		"ListCollaborators",
		"AddCollaborator:ghost",
		"AddCollaborator:alice",
		"AddCollaborator:nobody-gh",
		"AddCollaborator:bob",
	}, target.calls)
	require.Equal(t, 2, log.Len())
	assert.Contains(t, log.Entries()[0], "ghost")
	assert.Contains(t, log.Entries()[1], "nobody-gh")
	assert.Contains(t, log.Entries()[1], "GitLab user nobody")
}

func TestCreateCollaboratorsSecondRunAddsNothing(t *testing.T) {
	target := &fakeTarget{}
	im := NewImporter(target, usermap.New(map[string]string{"alice": "Alice-GH"}), NewFollowUpLog(nil), nil)
	usernames := []string{"alice", "bob"}

	added, err := im.CreateCollaborators(context.Background(), importRepo, usernames)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	target.calls = nil
	added, err = im.CreateCollaborators(context.Background(), importRepo, usernames)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, []string{"ListCollaborators"}, target.calls)
}

func TestCreateCollaboratorsSkipsCaseInsensitiveMatches(t *testing.T) {
	target := &fakeTarget{collaborators: []string{"Bob"}}
	im := NewImporter(target, usermap.New(nil), NewFollowUpLog(nil), nil)

	added, err := im.CreateCollaborators(context.Background(), importRepo, []string{"bob", "bob"})
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, []string{"ListCollaborators"}, target.calls)
}

func TestCreateMilestonesInSourceOrder(t *testing.T) {
	target := &fakeTarget{}
	recorder := newFakeRecorder()
	im := NewImporter(target, usermap.New(nil), NewFollowUpLog(nil), recorder)

	remap, err := im.CreateMilestones(context.Background(), importRepo, []model.Milestone{
		{SourceID: 9, Title: "v3"},
		{SourceID: 2, Title: "v1", Closed: true},
		{SourceID: 5, Title: "v2"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.MilestoneMap{2: 101, 5: 102, 9: 103}, remap)
	require.Len(t, target.milestones, 3)
	assert.Equal(t, "v1", target.milestones[0].Title)
	assert.True(t, target.milestones[0].Closed)
	assert.Equal(t, "v3", target.milestones[2].Title)
	assert.Equal(t, map[int]int{2: 101, 5: 102, 9: 103}, recorder.milestones)
}

func TestCreateMilestonesFailureIsFatal(t *testing.T) {
	target := &fakeTarget{milestoneErr: errors.New("boom")}
	im := NewImporter(target, usermap.New(nil), NewFollowUpLog(nil), nil)

	_, err := im.CreateMilestones(context.Background(), importRepo, []model.Milestone{{SourceID: 1}, {SourceID: 2}})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"CreateMilestone"}, target.calls)
}

func TestCreateIssuesRoundTrip(t *testing.T) {
	target := &fakeTarget{}
	im := NewImporter(target, usermap.New(nil), NewFollowUpLog(nil), nil)

	remap, err := im.CreateMilestones(context.Background(), importRepo, []model.Milestone{{SourceID: 5, Title: "v1"}})
	require.NoError(t, err)
	created, err := im.CreateIssues(context.Background(), importRepo, []model.Issue{
		{ID: 10, Title: "Crash", MilestoneID: intPtr(5), Closed: true},
	}, remap)
	require.NoError(t, err)

	assert.Equal(t, 1, created)
	require.Len(t, target.issues, 1)
	require.NotNil(t, target.issues[0].Milestone)
	assert.Equal(t, remap[5], *target.issues[0].Milestone)
	assert.Equal(t, []int{1}, target.closed)
}

func TestCreateIssuesBodyAndComments(t *testing.T) {
	at := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	target := &fakeTarget{}
	im := NewImporter(target, usermap.New(map[string]string{"alice": "alice-gh"}), NewFollowUpLog(nil), nil)

	_, err := im.CreateIssues(context.Background(), importRepo, []model.Issue{{
		ID:          1,
		Title:       "Bug",
		Description: "Fix bug",
		Author:      "alice",
		CreatedAt:   at,
		Labels:      []string{"bug", "P1"},
		Comments: []model.Comment{
			{ID: 8, Author: "bob", AuthorName: "Bob", Body: "second", CreatedAt: at},
			{ID: 7, Author: "alice", AuthorName: "Alice", Body: "changed title", System: true, CreatedAt: at},
			{ID: 6, Author: "alice", AuthorName: "Alice", Body: "lgtm", CreatedAt: at},
		},
	}}, model.MilestoneMap{})
	require.NoError(t, err)

	require.Len(t, target.issues, 1)
	issue := target.issues[0]
	assert.Equal(t, "Bug", issue.Title)
	assert.Equal(t, []string{"bug", "P1"}, issue.Labels)
	assert.Nil(t, issue.Milestone)
	assert.Contains(t, issue.Body, "Fix bug")
	assert.Contains(t, issue.Body, "`alice-gh`")
	assert.Contains(t, issue.Body, "changed title")
	assert.NotContains(t, issue.Body, "lgtm")

	require.Len(t, target.comments, 2)
	assert.Contains(t, target.comments[0].Body, "lgtm")
	assert.Contains(t, target.comments[1].Body, "second")
	assert.Equal(t, 1, target.comments[0].Number)
	assert.Empty(t, target.closed)
}

func TestCreateIssuesAssignees(t *testing.T) {
	target := &fakeTarget{}
	log := NewFollowUpLog(nil)
	users := usermap.New(map[string]string{"owner": "acme-owner", "alice": "alice-gh"})
	im := NewImporter(target, users, log, nil)

	_, err := im.CreateIssues(context.Background(), importRepo, []model.Issue{
		{ID: 1, Title: "mine", Assignees: []string{"alice", "owner"}},
		{ID: 2, Title: "theirs", Assignees: []string{"carol"}},
	}, model.MilestoneMap{})
	require.NoError(t, err)

	require.Len(t, target.issues, 2)
	assert.Equal(t, []string{"acme-owner"}, target.issues[0].Assignees)
	assert.Empty(t, target.issues[1].Assignees)
	assert.Equal(t, []string{
		"Assign alice-gh to https://github.com/acme-owner/team_web/issues/1",
		"Assign carol to https://github.com/acme-owner/team_web/issues/2",
	}, log.Entries())
}

func TestCreateIssuesInSourceOrder(t *testing.T) {
	target := &fakeTarget{}
	recorder := newFakeRecorder()
	im := NewImporter(target, usermap.New(nil), NewFollowUpLog(nil), recorder)

	_, err := im.CreateIssues(context.Background(), importRepo, []model.Issue{
		{ID: 3, Title: "third"},
		{ID: 1, Title: "first"},
		{ID: 2, Title: "second"},
	}, model.MilestoneMap{})
	require.NoError(t, err)

	var titles []string
	for _, i := range target.issues {
		titles = append(titles, i.Title)
	}
	assert.Equal(t, []string{"first", "second", "third"}, titles)
	assert.Equal(t, map[int]int{1: 1, 2: 2, 3: 3}, recorder.issues)
}

func TestCreateIssuesUnknownMilestone(t *testing.T) {
	target := &fakeTarget{}
	im := NewImporter(target, usermap.New(nil), NewFollowUpLog(nil), nil)

	created, err := im.CreateIssues(context.Background(), importRepo, []model.Issue{
		{ID: 1, Title: "ok"},
		{ID: 2, Title: "broken", MilestoneID: intPtr(42)},
		{ID: 3, Title: "never"},
	}, model.MilestoneMap{5: 1})

	require.ErrorIs(t, err, ErrUnknownMilestone)
	assert.Contains(t, err.Error(), "issue #2")
	assert.Contains(t, err.Error(), "milestone 42")
	assert.Equal(t, 1, created)
	assert.Len(t, target.issues, 1)
}

func TestCreateIssuesStopsWhenCanceled(t *testing.T) {
	target := &fakeTarget{}
	im := NewImporter(target, usermap.New(nil), NewFollowUpLog(nil), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := im.CreateIssues(ctx, importRepo, []model.Issue{{ID: 1}}, model.MilestoneMap{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, target.calls)
}
