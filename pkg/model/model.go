// Package model holds the platform-neutral records passed between the GitLab
// source, the migration core and the GitHub destination.
package model

import (
	"errors"
	"sort"
	"time"
)

// ErrAccessDenied marks responses rejecting the credentials (401 or 403).
var ErrAccessDenied = errors.New("access denied")

// Group is a source namespace that owns projects.
type Group struct {
	ID       int
	Name     string
	FullPath string
}

// Project is a read-only snapshot of the source project.
type Project struct {
	ID                int
	Name              string
	Path              string
	NamespaceName     string
	PathWithNamespace string
	Description       string
	IssuesEnabled     bool
	WebURL            string
	CloneURL          string
}

// NewRepositoryRequest describes the destination repository to create.
type NewRepositoryRequest struct {
	Name        string
	Private     bool
	Description string
	Homepage    string
}

// Visibility returns "private" or "public".
func (r NewRepositoryRequest) Visibility() string {
	if r.Private {
		return "private"
	}
	return "public"
}

// Repository is the destination repository once created.
type Repository struct {
	ID       int64
	Owner    string
	Name     string
	FullName string
	CloneURL string
	HTMLURL  string
}

// Milestone is a source milestone. It is never mutated; destination ids live
// in a MilestoneMap.
type Milestone struct {
	SourceID    int
	Title       string
	Description string
	Closed      bool
}

// MilestoneMap maps a source milestone id to the destination milestone number.
type MilestoneMap map[int]int

// Issue is a source issue with all of its notes.
type Issue struct {
	ID          int
	Title       string
	Description string
	Author      string
	CreatedAt   time.Time
	Closed      bool
	Assignees   []string
	Labels      []string
	MilestoneID *int
	WebURL      string
	Comments    []Comment
}

// Comment is a source note. System notes are platform generated audit
// entries such as "changed milestone".
type Comment struct {
	ID         int
	CreatedAt  time.Time
	AuthorName string
	Author     string
	Body       string
	System     bool
}

// SystemComments returns the system notes in ascending id order.
func (i Issue) SystemComments() []Comment {
	return i.partition(true)
}

// UserComments returns the human authored notes in ascending id order.
func (i Issue) UserComments() []Comment {
	return i.partition(false)
}

func (i Issue) partition(system bool) []Comment {
	var ret []Comment
	for _, c := range i.Comments {
		if c.System == system {
			ret = append(ret, c)
		}
	}
	sort.SliceStable(ret, func(a, b int) bool { return ret[a].ID < ret[b].ID })
	return ret
}

// NewIssue is a fully translated issue ready to be created on the destination.
type NewIssue struct {
	Title     string
	Body      string
	Labels    []string
	Assignees []string
	Milestone *int
}

// CreatedIssue identifies an issue created on the destination.
type CreatedIssue struct {
	Number  int
	HTMLURL string
}

// SortMilestones orders milestones by ascending source id.
func SortMilestones(milestones []Milestone) []Milestone {
	sorted := append([]Milestone(nil), milestones...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].SourceID < sorted[b].SourceID })
	return sorted
}

// SortIssues orders issues by ascending source id.
func SortIssues(issues []Issue) []Issue {
	sorted := append([]Issue(nil), issues...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].ID < sorted[b].ID })
	return sorted
}
