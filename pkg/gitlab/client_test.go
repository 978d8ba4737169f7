package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnector(t *testing.T, mux *http.ServeMux) *Connector {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := NewConnector("test-token", server.URL)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprint(w, body)
}

func TestListGroupsPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/groups", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.Header.Get("PRIVATE-TOKEN"))
		if r.URL.Query().Get("page") == "2" {
			writeJSON(w, `[{"id":2,"name":"Second","full_path":"second"}]`)
			return
		}
		w.Header().Set("X-Next-Page", "2")
		writeJSON(w, `[{"id":1,"name":"First Group","full_path":"first"}]`)
	})

	groups, err := newTestConnector(t, mux).ListGroups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Group{
		{ID: 1, Name: "First Group", FullPath: "first"},
		{ID: 2, Name: "Second", FullPath: "second"},
	}, groups)
}

func TestGetProject(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/42", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{
			"id": 42,
			"name": "Web App",
			"path": "web-app",
			"path_with_namespace": "team/web-app",
			"description": "the app",
			"issues_enabled": true,
			"web_url": "https://gitlab.example.com/team/web-app",
			"http_url_to_repo": "https://gitlab.example.com/team/web-app.git",
			"namespace": {"id": 7, "name": "My Team", "full_path": "team"}
		}`)
	})

	project, err := newTestConnector(t, mux).GetProject(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, model.Project{
		ID:                42,
		Name:              "Web App",
		Path:              "web-app",
		NamespaceName:     "My Team",
		PathWithNamespace: "team/web-app",
		Description:       "the app",
		IssuesEnabled:     true,
		WebURL:            "https://gitlab.example.com/team/web-app",
		CloneURL:          "https://gitlab.example.com/team/web-app.git",
	}, project)
}

func TestGetProjectUnreachable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, `{"message":"401 Unauthorized"}`)
	})

	_, err := newTestConnector(t, mux).GetProject(context.Background(), "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get GitLab project 42")
	assert.ErrorIs(t, err, model.ErrAccessDenied)
}

func TestGetProjectNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"message":"404 Project Not Found"}`)
	})

	_, err := newTestConnector(t, mux).GetProject(context.Background(), "42")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrAccessDenied)
}

func TestListCollaboratorUsernamesDeduplicates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/42/members/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{"id":1,"username":"alice"},{"id":2,"username":"bob"},{"id":1,"username":"alice"}]`)
	})

	names, err := newTestConnector(t, mux).ListCollaboratorUsernames(context.Background(), model.Project{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)
}

func TestListMilestones(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/42/milestones", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("include_parent_milestones"))
		assert.Empty(t, r.URL.Query().Get("state"))
		writeJSON(w, `[
			{"id":12,"iid":2,"title":"v2","description":"second","state":"active"},
			{"id":5,"iid":1,"title":"v1","description":"first","state":"closed"}
		]`)
	})

	milestones, err := newTestConnector(t, mux).ListMilestones(context.Background(), model.Project{ID: 42})
	require.NoError(t, err)
	assert.Equal(t, []model.Milestone{
		{SourceID: 5, Title: "v1", Description: "first", Closed: true},
		{SourceID: 12, Title: "v2", Description: "second"},
	}, milestones)
}

func TestListIssuesWithNotes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v4/projects/42/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		writeJSON(w, `[
			{
				"id": 900, "iid": 10, "title": "Crash", "description": "Fix bug", "state": "closed",
				"author": {"username": "alice", "name": "Alice"},
				"assignees": [{"username": "bob"}, {"username": "carol"}],
				"labels": ["bug", "backend"],
				"milestone": {"id": 5, "title": "v1"},
				"created_at": "2021-03-04T05:06:07Z",
				"web_url": "https://gitlab.example.com/team/web-app/-/issues/10"
			},
			{
				"id": 800, "iid": 3, "title": "Older", "description": "", "state": "opened",
				"author": {"username": "bob", "name": "Bob"},
				"labels": [],
				"created_at": "2021-01-01T00:00:00Z"
			}
		]`)
	})
	mux.HandleFunc("/api/v4/projects/42/issues/10/notes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[
			{"id": 71, "body": "lgtm", "system": false, "author": {"username": "bob", "name": "Bob"}, "created_at": "2021-03-05T00:00:00Z"},
			{"id": 70, "body": "changed title", "system": true, "author": {"username": "alice", "name": "Alice"}, "created_at": "2021-03-04T06:00:00Z"}
		]`)
	})
	mux.HandleFunc("/api/v4/projects/42/issues/3/notes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[]`)
	})

	issues, err := newTestConnector(t, mux).ListIssues(context.Background(), model.Project{ID: 42})
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, 3, issues[0].ID)
	assert.Nil(t, issues[0].MilestoneID)
	assert.Empty(t, issues[0].Comments)

	issue := issues[1]
	assert.Equal(t, 10, issue.ID)
	assert.Equal(t, "Crash", issue.Title)
	assert.Equal(t, "Fix bug", issue.Description)
	assert.Equal(t, "alice", issue.Author)
	assert.True(t, issue.Closed)
	assert.Equal(t, []string{"bob", "carol"}, issue.Assignees)
	assert.Equal(t, []string{"bug", "backend"}, issue.Labels)
	require.NotNil(t, issue.MilestoneID)
	assert.Equal(t, 5, *issue.MilestoneID)
	assert.Equal(t, 2021, issue.CreatedAt.Year())

	require.Len(t, issue.Comments, 2)
	assert.Equal(t, []model.Comment{{
		ID: 70, CreatedAt: issue.Comments[1].CreatedAt, AuthorName: "Alice", Author: "alice", Body: "changed title", System: true,
	}}, issue.SystemComments())
	assert.Equal(t, "lgtm", issue.UserComments()[0].Body)
}
