package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vecino/internal/modules/report/domain"

	_ "modernc.org/sqlite"
)

// created_at is fixed width so it sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteLedger struct {
	db *sql.DB
}

func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	ledger := &SQLiteLedger{db: db}
	if err := ledger.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

func (l *SQLiteLedger) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS attempts (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  report_id INTEGER NOT NULL,
  outcome TEXT NOT NULL,
  title TEXT,
  cause TEXT,
  created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS attempt_evidence (
  attempt_id TEXT NOT NULL REFERENCES attempts(id),
  idx INTEGER NOT NULL,
  file_name TEXT NOT NULL,
  uri TEXT,
  mime_type TEXT,
  status TEXT NOT NULL,
  error TEXT,
  PRIMARY KEY (attempt_id, idx)
);
CREATE INDEX IF NOT EXISTS attempts_report_idx ON attempts(report_id, created_at);
`
	if _, err := l.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create ledger tables: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) Record(ctx context.Context, attempt domain.Attempt) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback()
	const insertAttempt = `
INSERT INTO attempts (id, kind, report_id, outcome, title, cause, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	if _, err := tx.ExecContext(ctx, insertAttempt,
		attempt.ID,
		string(attempt.Kind),
		attempt.ReportID,
		string(attempt.Outcome),
		attempt.Title,
		attempt.Cause,
		attempt.CreatedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	const insertEvidence = `
INSERT INTO attempt_evidence (attempt_id, idx, file_name, uri, mime_type, status, error)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	for _, ev := range attempt.Evidence {
		if _, err := tx.ExecContext(ctx, insertEvidence, attempt.ID, ev.Index, ev.FileName, ev.URI, ev.MimeType, string(ev.Status), ev.Error); err != nil {
			return fmt.Errorf("insert evidence %d: %w", ev.Index, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempt: %w", err)
	}
	return nil
}

func (l *SQLiteLedger) List(ctx context.Context, limit int) ([]domain.Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx, `
SELECT id, kind, report_id, outcome, COALESCE(title, ''), COALESCE(cause, ''), created_at
FROM attempts
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	out := []domain.Attempt{}
	for rows.Next() {
		var (
			a         domain.Attempt
			kind      string
			outcome   string
			createdAt string
		)
		if err := rows.Scan(&a.ID, &kind, &a.ReportID, &outcome, &a.Title, &a.Cause, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Kind = domain.AttemptKind(kind)
		a.Outcome = domain.Outcome(outcome)
		if a.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse attempt time: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	rows.Close()
	for i := range out {
		if out[i].Evidence, err = l.evidence(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *SQLiteLedger) FailedEvidence(ctx context.Context, reportID int) ([]domain.LocalFile, error) {
	var attemptID string
	err := l.db.QueryRowContext(ctx, `
SELECT id FROM attempts
WHERE report_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT 1`, reportID).Scan(&attemptID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest attempt: %w", err)
	}
	records, err := l.evidence(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	out := []domain.LocalFile{}
	for _, r := range records {
		if r.Status == domain.EvidenceFailed {
			out = append(out, domain.LocalFile{URI: r.URI, MimeType: r.MimeType, FileName: r.FileName})
		}
	}
	return out, nil
}

func (l *SQLiteLedger) evidence(ctx context.Context, attemptID string) ([]domain.EvidenceRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT idx, file_name, COALESCE(uri, ''), COALESCE(mime_type, ''), status, COALESCE(error, '')
FROM attempt_evidence
WHERE attempt_id = ?
ORDER BY idx`, attemptID)
	if err != nil {
		return nil, fmt.Errorf("query evidence: %w", err)
	}
	defer rows.Close()
	out := []domain.EvidenceRecord{}
	for rows.Next() {
		var r domain.EvidenceRecord
		var status string
		if err := rows.Scan(&r.Index, &r.FileName, &r.URI, &r.MimeType, &status, &r.Error); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		r.Status = domain.EvidenceStatus(status)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evidence: %w", err)
	}
	return out, nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
