// Package journal records agent activity per project in SQLite: the chat,
// review and feedback sessions that ran, what they cost, and the reviews
// they produced.
//
// The journal lives beside the projects, at <root>/.storybook/journal.db.
// The hidden directory has no project.json, so the project store never
// lists it. The journal is an accessory: callers log its failures and keep
// working without it.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

var timeNow = time.Now

const (
	// DirName is the hidden directory under the projects root.
	DirName = ".storybook"
	// FileName is the journal database filename.
	FileName = "journal.db"
)

// tsLayout is fixed-width so stored timestamps sort lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Session kinds.
const (
	KindChat     = "chat"
	KindReview   = "review"
	KindFeedback = "feedback"
)

// Session statuses.
const (
	StatusRunning   = "running"
	StatusComplete  = "complete"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Session is one agent session about a project.
type Session struct {
	ID             string     `json:"id"`
	ProjectID      string     `json:"project_id"`
	Kind           string     `json:"kind"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	CostUSD        float64    `json:"cost_usd"`
	Turns          int        `json:"turns"`
	AgentSessionID string     `json:"agent_session_id,omitempty"`
	Status         string     `json:"status"`
}

// Outcome is how a session ended.
type Outcome struct {
	Status         string
	CostUSD        float64
	Turns          int
	AgentSessionID string
}

// Review is a saved editorial review.
type Review struct {
	ID         int64     `json:"id"`
	ProjectID  string    `json:"project_id"`
	CreatedAt  time.Time `json:"created_at"`
	FocusAreas []string  `json:"focus_areas"`
	Content    string    `json:"content"`
	CostUSD    float64   `json:"cost_usd"`
}

// Stats aggregates a project's agent usage.
type Stats struct {
	Sessions     int     `json:"sessions"`
	Reviews      int     `json:"reviews"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	TotalTurns   int     `json:"total_turns"`
}

// ─── Journal ─────────────────────────────────────────────────────────────────

// Journal is the SQLite-backed activity log.
type Journal struct {
	db     *sql.DB
	logger zerolog.Logger
}

// DefaultPath returns the journal path for a projects root.
func DefaultPath(root string) string {
	return filepath.Join(root, DirName, FileName)
}

// Open opens (creating if needed) the journal at path, sets the SQLite
// pragmas and runs migrations.
func Open(path string, logger zerolog.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("journal: create dir: %w", err)
	}

	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	j := &Journal{db: db, logger: logger.With().Str("component", "journal").Logger()}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id               TEXT PRIMARY KEY,
			project_id       TEXT    NOT NULL,
			kind             TEXT    NOT NULL,
			started_at       TEXT    NOT NULL,
			ended_at         TEXT,
			cost_usd         REAL    NOT NULL DEFAULT 0,
			turns            INTEGER NOT NULL DEFAULT 0,
			agent_session_id TEXT,
			status           TEXT    NOT NULL DEFAULT 'running'
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_project ON sessions(project_id, started_at DESC);

		CREATE TABLE IF NOT EXISTS reviews (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id  TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			focus_areas TEXT NOT NULL DEFAULT '[]',
			content     TEXT NOT NULL,
			cost_usd    REAL NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_project ON reviews(project_id, created_at DESC);
	`
	_, err := j.db.Exec(schema)
	return err
}

// ─── Sessions ────────────────────────────────────────────────────────────────

// StartSession records a running session and returns its id.
func (j *Journal) StartSession(projectID, kind string) (string, error) {
	id := uuid.NewString()
	_, err := j.db.Exec(
		`INSERT INTO sessions (id, project_id, kind, started_at, status) VALUES (?, ?, ?, ?, ?)`,
		id, projectID, kind, formatTime(timeNow()), StatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("journal: start session: %w", err)
	}
	j.logger.Debug().Str("session_id", id).Str("project_id", projectID).Str("kind", kind).Msg("session started")
	return id, nil
}

// FinishSession stamps a session's end and outcome. Chat sessions finish
// once per exchange, so cost and turns accumulate.
func (j *Journal) FinishSession(id string, out Outcome) error {
	if out.Status == "" {
		out.Status = StatusComplete
	}
	res, err := j.db.Exec(
		`UPDATE sessions
		    SET ended_at = ?, status = ?,
		        cost_usd = cost_usd + ?, turns = turns + ?,
		        agent_session_id = COALESCE(NULLIF(?, ''), agent_session_id)
		  WHERE id = ?`,
		formatTime(timeNow()), out.Status, out.CostUSD, out.Turns, out.AgentSessionID, id,
	)
	if err != nil {
		return fmt.Errorf("journal: finish session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("journal: unknown session %q", id)
	}
	return nil
}

// RecentSessions returns a project's sessions, newest first. An empty
// projectID lists every project.
func (j *Journal) RecentSessions(projectID string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `SELECT id, project_id, kind, started_at, ended_at, cost_usd, turns,
	                 COALESCE(agent_session_id, ''), status
	            FROM sessions WHERE 1=1`
	args := []any{}
	if projectID != "" {
		query += " AND project_id = ?"
		args = append(args, projectID)
	}
	query += " ORDER BY started_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []Session{}
	for rows.Next() {
		var (
			s       Session
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Kind, &started, &ended, &s.CostUSD, &s.Turns, &s.AgentSessionID, &s.Status); err != nil {
			return nil, err
		}
		s.StartedAt = parseTime(started)
		if ended.Valid {
			t := parseTime(ended.String)
			s.EndedAt = &t
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// ─── Reviews ─────────────────────────────────────────────────────────────────

// SaveReview stores a finished review and returns its id.
func (j *Journal) SaveReview(projectID string, focusAreas []string, content string, costUSD float64) (int64, error) {
	if focusAreas == nil {
		focusAreas = []string{}
	}
	areas, err := json.Marshal(focusAreas)
	if err != nil {
		return 0, fmt.Errorf("journal: encode focus areas: %w", err)
	}
	res, err := j.db.Exec(
		`INSERT INTO reviews (project_id, created_at, focus_areas, content, cost_usd) VALUES (?, ?, ?, ?, ?)`,
		projectID, formatTime(timeNow()), string(areas), content, costUSD,
	)
	if err != nil {
		return 0, fmt.Errorf("journal: save review: %w", err)
	}
	return res.LastInsertId()
}

// LatestReview returns the project's newest review. It reports false when
// the project has none.
func (j *Journal) LatestReview(projectID string) (*Review, bool, error) {
	reviews, err := j.Reviews(projectID, 1)
	if err != nil {
		return nil, false, err
	}
	if len(reviews) == 0 {
		return nil, false, nil
	}
	return &reviews[0], true, nil
}

// Reviews returns a project's reviews, newest first.
func (j *Journal) Reviews(projectID string, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(
		`SELECT id, project_id, created_at, focus_areas, content, cost_usd
		   FROM reviews WHERE project_id = ?
		  ORDER BY created_at DESC, id DESC LIMIT ?`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []Review{}
	for rows.Next() {
		var (
			r       Review
			created string
			areas   string
		)
		if err := rows.Scan(&r.ID, &r.ProjectID, &created, &areas, &r.Content, &r.CostUSD); err != nil {
			return nil, err
		}
		r.CreatedAt = parseTime(created)
		if err := json.Unmarshal([]byte(areas), &r.FocusAreas); err != nil || r.FocusAreas == nil {
			r.FocusAreas = []string{}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats sums a project's sessions and counts its reviews.
func (j *Journal) Stats(projectID string) (Stats, error) {
	var st Stats
	err := j.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(cost_usd), 0), COALESCE(SUM(turns), 0) FROM sessions WHERE project_id = ?`,
		projectID,
	).Scan(&st.Sessions, &st.TotalCostUSD, &st.TotalTurns)
	if err != nil {
		return st, fmt.Errorf("journal: stats: %w", err)
	}
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM reviews WHERE project_id = ?`, projectID).Scan(&st.Reviews); err != nil {
		return st, fmt.Errorf("journal: stats: %w", err)
	}
	return st, nil
}

// Forget removes everything recorded about a project.
func (j *Journal) Forget(projectID string) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("journal: forget: %w", err)
	}
	for _, q := range []string{
		`DELETE FROM sessions WHERE project_id = ?`,
		`DELETE FROM reviews WHERE project_id = ?`,
	} {
		if _, err := tx.Exec(q, projectID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("journal: forget: %w", err)
		}
	}
	return tx.Commit()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func formatTime(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(tsLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

// OpenOptional opens the journal for root when enabled. Failures are
// logged and reported as a nil journal, so callers can carry on without.
func OpenOptional(root string, enabled bool, logger zerolog.Logger) *Journal {
	if !enabled {
		return nil
	}
	j, err := Open(DefaultPath(root), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("journal unavailable, continuing without it")
		return nil
	}
	return j
}
