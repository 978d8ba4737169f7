// Package journal persists a trace of each migration run in SQLite so that
// the operator can follow up after a run stopped part way.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/krrrr38/gitlab-project-2-github/pkg/model"
	_ "github.com/mattn/go-sqlite3"
)

// Journal records one migration run.
type Journal struct {
	db    *sql.DB
	runID int64
	now   func() time.Time
}

// Run is a recorded migration run.
type Run struct {
	ID         int64
	SourceURL  string
	TargetURL  string
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Error      string
}

// IssueEntry maps a source issue to the created destination issue.
type IssueEntry struct {
	SourceID int
	Number   int
	URL      string
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	j := &Journal{db: db, now: time.Now}
	if err := j.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_url TEXT NOT NULL DEFAULT '',
		target_url TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS milestones (
		run_id INTEGER NOT NULL,
		source_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		number INTEGER NOT NULL,
		PRIMARY KEY (run_id, source_id),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS issues (
		run_id INTEGER NOT NULL,
		source_id INTEGER NOT NULL,
		source_url TEXT NOT NULL,
		number INTEGER NOT NULL,
		url TEXT NOT NULL,
		PRIMARY KEY (run_id, source_id),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE TABLE IF NOT EXISTS follow_ups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		entry TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Start begins a new run. Record calls before Start fail.
func (j *Journal) Start() error {
	res, err := j.db.Exec(`INSERT INTO runs (started_at) VALUES (?)`, j.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	j.runID, err = res.LastInsertId()
	return err
}

// RunID returns the id of the current run.
func (j *Journal) RunID() int64 {
	return j.runID
}

func (j *Journal) started() error {
	if j.runID == 0 {
		return errors.New("journal run not started")
	}
	return nil
}

func (j *Journal) RecordRepository(project model.Project, repo model.Repository) error {
	if err := j.started(); err != nil {
		return err
	}
	_, err := j.db.Exec(`UPDATE runs SET source_url = ?, target_url = ? WHERE id = ?`,
		project.WebURL, repo.HTMLURL, j.runID)
	if err != nil {
		return fmt.Errorf("failed to save repository: %w", err)
	}
	return nil
}

func (j *Journal) RecordMilestone(milestone model.Milestone, number int) error {
	if err := j.started(); err != nil {
		return err
	}
	_, err := j.db.Exec(`INSERT INTO milestones (run_id, source_id, title, number) VALUES (?, ?, ?, ?)`,
		j.runID, milestone.SourceID, milestone.Title, number)
	if err != nil {
		return fmt.Errorf("failed to save milestone: %w", err)
	}
	return nil
}

func (j *Journal) RecordIssue(issue model.Issue, created model.CreatedIssue) error {
	if err := j.started(); err != nil {
		return err
	}
	_, err := j.db.Exec(`INSERT INTO issues (run_id, source_id, source_url, number, url) VALUES (?, ?, ?, ?, ?)`,
		j.runID, issue.ID, issue.WebURL, created.Number, created.HTMLURL)
	if err != nil {
		return fmt.Errorf("failed to save issue: %w", err)
	}
	return nil
}

func (j *Journal) RecordFollowUp(entry string) error {
	if err := j.started(); err != nil {
		return err
	}
	_, err := j.db.Exec(`INSERT INTO follow_ups (run_id, entry, created_at) VALUES (?, ?, ?)`,
		j.runID, entry, j.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save follow-up: %w", err)
	}
	return nil
}

// Finish marks the run as finished, keeping runErr when set.
func (j *Journal) Finish(runErr error) error {
	if err := j.started(); err != nil {
		return err
	}
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := j.db.Exec(`UPDATE runs SET finished_at = ?, error = ? WHERE id = ?`, j.now().UTC(), msg, j.runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// LatestRun returns the most recently started run.
func (j *Journal) LatestRun() (Run, error) {
	var r Run
	err := j.db.QueryRow(`
	SELECT id, source_url, target_url, started_at, finished_at, error
	FROM runs ORDER BY id DESC LIMIT 1
	`).Scan(&r.ID, &r.SourceURL, &r.TargetURL, &r.StartedAt, &r.FinishedAt, &r.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("no migration run recorded: %w", err)
	}
	if err != nil {
		return r, fmt.Errorf("failed to load run: %w", err)
	}
	return r, nil
}

// Milestones returns the remap table recorded for a run.
func (j *Journal) Milestones(runID int64) (model.MilestoneMap, error) {
	rows, err := j.db.Query(`SELECT source_id, number FROM milestones WHERE run_id = ? ORDER BY source_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	remap := model.MilestoneMap{}
	for rows.Next() {
		var sourceID, number int
		if err := rows.Scan(&sourceID, &number); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		remap[sourceID] = number
	}
	return remap, rows.Err()
}

// Issues returns the issues created in a run in source id order.
func (j *Journal) Issues(runID int64) ([]IssueEntry, error) {
	rows, err := j.db.Query(`SELECT source_id, number, url FROM issues WHERE run_id = ? ORDER BY source_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	var entries []IssueEntry
	for rows.Next() {
		var e IssueEntry
		if err := rows.Scan(&e.SourceID, &e.Number, &e.URL); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FollowUps returns the follow-up entries of a run in append order.
func (j *Journal) FollowUps(runID int64) ([]string, error) {
	rows, err := j.db.Query(`SELECT entry FROM follow_ups WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow-ups: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, fmt.Errorf("failed to scan follow-up: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
