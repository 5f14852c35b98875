package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/receipt-reconciler/internal/reconcile"
)

// Schema for the run ledger. Applied on Open.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	finished_at INTEGER,
	total INTEGER NOT NULL DEFAULT 0,
	cache_hits INTEGER NOT NULL DEFAULT 0,
	extracted INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS outcomes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL REFERENCES runs(id),
	path TEXT NOT NULL,
	fingerprint TEXT,
	cache_hit INTEGER NOT NULL,
	error TEXT,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_fp ON outcomes(fingerprint) WHERE fingerprint != '';
`

// Ledger persists batch runs and per-record outcomes to SQLite, giving
// re-run visibility the console log alone doesn't: which fingerprints were
// served from cache, which records keep failing, when each run finished.
type Ledger struct {
	db     *sql.DB
	runID  string
	logger *slog.Logger
}

// Open opens (creating if necessary) the ledger database at path.
func Open(path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &Ledger{db: db, logger: logger}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// StartRun opens a new run row and makes it current. Returns the run ID.
func (l *Ledger) StartRun(ctx context.Context) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Unix())
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	l.runID = id
	l.logger.Info("ledger.run.start", "run_id", id)
	return id, nil
}

// RecordOutcome implements reconcile.RunRecorder for the current run.
func (l *Ledger) RecordOutcome(ctx context.Context, o reconcile.Outcome) error {
	hit := 0
	if o.CacheHit {
		hit = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, path, fingerprint, cache_hit, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		l.runID, o.RelativePath, o.Fingerprint, hit, o.Err, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// FinishRun stamps the current run with its summary.
func (l *Ledger) FinishRun(ctx context.Context, sum reconcile.Summary) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, cache_hits = ?, extracted = ?, failed = ?
		 WHERE id = ?`,
		time.Now().UTC().Unix(), sum.Total, sum.CacheHits, sum.Extracted, sum.Failed, l.runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	l.logger.Info("ledger.run.finish",
		"run_id", l.runID,
		"total", sum.Total,
		"cache_hits", sum.CacheHits,
		"extracted", sum.Extracted,
		"failed", sum.Failed,
	)
	return nil
}

// RunOutcome is one persisted outcome row, as read back by ListOutcomes.
type RunOutcome struct {
	Path        string
	Fingerprint string
	CacheHit    bool
	Err         string
}

// ListOutcomes returns the outcomes recorded for a run, in insertion order.
func (l *Ledger) ListOutcomes(ctx context.Context, runID string) ([]RunOutcome, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT path, fingerprint, cache_hit, error FROM outcomes WHERE run_id = ? ORDER BY id`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []RunOutcome
	for rows.Next() {
		var o RunOutcome
		var hit int
		if err := rows.Scan(&o.Path, &o.Fingerprint, &hit, &o.Err); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.CacheHit = hit == 1
		out = append(out, o)
	}
	return out, rows.Err()
}
