package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vecino/internal/modules/auth/domain"
	apperrors "vecino/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserID       = "user_id"
	keyIsAdmin      = "is_admin"
)

// SQLiteCredentialStore keeps the four session scalars as rows of a
// key/value table.
type SQLiteCredentialStore struct {
	db *sql.DB
}

func NewSQLiteCredentialStore(dbPath string) (*SQLiteCredentialStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteCredentialStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteCredentialStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS credentials (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create credentials table: %w", err)
	}
	return nil
}

func (s *SQLiteCredentialStore) Save(ctx context.Context, session domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin credentials tx: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("reset credentials: %w", err)
	}
	rows := [][2]string{
		{keyAccessToken, session.AccessToken},
		{keyRefreshToken, session.RefreshToken},
		{keyUserID, strconv.Itoa(session.UserID)},
		{keyIsAdmin, strconv.FormatBool(session.IsAdmin)},
	}
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO credentials (key, value) VALUES (?, ?)`, row[0], row[1]); err != nil {
			return fmt.Errorf("store %s: %w", row[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credentials: %w", err)
	}
	return nil
}

func (s *SQLiteCredentialStore) Load(ctx context.Context) (domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM credentials`)
	if err != nil {
		return domain.Session{}, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()
	values := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.Session{}, fmt.Errorf("scan credentials: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return domain.Session{}, fmt.Errorf("iterate credentials: %w", err)
	}
	session := domain.Session{
		AccessToken:  values[keyAccessToken],
		RefreshToken: values[keyRefreshToken],
	}
	if !session.Complete() {
		return domain.Session{}, apperrors.ErrNoSession
	}
	if v := values[keyUserID]; v != "" {
		if session.UserID, err = strconv.Atoi(v); err != nil {
			return domain.Session{}, fmt.Errorf("decode user id: %w", err)
		}
	}
	session.IsAdmin = values[keyIsAdmin] == "true"
	return session, nil
}

func (s *SQLiteCredentialStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *SQLiteCredentialStore) Close() error {
	return s.db.Close()
}
