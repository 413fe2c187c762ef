// Package keystore records the quest keypairs generated by play, so they can
// be recovered after a workspace rebuild.
package keystore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

type QuestKey struct {
	Series    int
	Quest     int
	PK        string
	SK        string
	CreatedAt time.Time
}

func Open(path, lockPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create keystore directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite keystore: %w", err)
	}

	queries := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"CREATE TABLE IF NOT EXISTS quest_keys (series INTEGER NOT NULL, quest INTEGER NOT NULL, pk TEXT NOT NULL, sk TEXT NOT NULL, created_at INTEGER NOT NULL, PRIMARY KEY (series, quest));",
	}
	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init keystore schema: %w", err)
		}
	}

	return &Store{db: db, lock: flock.New(lockPath)}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put upserts the keypair for a quest. Replaying a quest replaces the
// recorded keypair, matching the server issuing a fresh one per practice run.
func (s *Store) Put(key QuestKey) error {
	locked, err := s.lock.TryLockContext(context.Background(), 5*time.Second)
	if err != nil {
		return fmt.Errorf("lock keystore: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock keystore: timeout acquiring lock")
	}
	defer func() { _ = s.lock.Unlock() }()

	createdAt := key.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = s.db.Exec(`
		INSERT INTO quest_keys (series, quest, pk, sk, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(series, quest) DO UPDATE SET
			pk=excluded.pk,
			sk=excluded.sk,
			created_at=excluded.created_at
	`, key.Series, key.Quest, key.PK, key.SK, createdAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("keystore write: %w", err)
	}
	return nil
}

func (s *Store) List() ([]QuestKey, error) {
	rows, err := s.db.Query("SELECT series, quest, pk, sk, created_at FROM quest_keys ORDER BY series, quest")
	if err != nil {
		return nil, fmt.Errorf("keystore read: %w", err)
	}
	defer rows.Close()

	var keys []QuestKey
	for rows.Next() {
		var key QuestKey
		var createdUnix int64
		if err := rows.Scan(&key.Series, &key.Quest, &key.PK, &key.SK, &createdUnix); err != nil {
			return nil, fmt.Errorf("keystore scan: %w", err)
		}
		key.CreatedAt = time.Unix(createdUnix, 0).UTC()
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keystore iterate: %w", err)
	}
	return keys, nil
}
