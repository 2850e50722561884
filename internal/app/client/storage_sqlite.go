package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"wesync/internal/domain/folder"
	"wesync/internal/domain/message"
)

// SQLiteStorage локальный кэш ключей синхронизации, списка папок и сообщений
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStorage{db: db}
	if err := s.initTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init cache tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sync_keys (
			folder_id TEXT PRIMARY KEY,
			sync_key TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			folder_id TEXT NOT NULL,
			sender TEXT NOT NULL,
			receiver TEXT NOT NULL,
			type INTEGER NOT NULL,
			content BLOB,
			time INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_messages_folder ON messages(folder_id, time);
	`)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SyncKey последний ключ папки, BootstrapKey если папка еще не синхронизировалась
func (s *SQLiteStorage) SyncKey(ctx context.Context, folderID string) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx, `SELECT sync_key FROM sync_keys WHERE folder_id = ?`, folderID).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return folder.BootstrapKey, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read sync key: %w", err)
	}
	return key, nil
}

func (s *SQLiteStorage) SaveSyncKey(ctx context.Context, folderID, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_keys (folder_id, sync_key) VALUES (?, ?)
		ON CONFLICT(folder_id) DO UPDATE SET sync_key = excluded.sync_key
	`, folderID, key)
	if err != nil {
		return fmt.Errorf("failed to save sync key: %w", err)
	}
	return nil
}

// AddFolders запоминает папки, уже известные папки пропускаются
func (s *SQLiteStorage) AddFolders(ctx context.Context, ids []string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO folders (id) VALUES (?)`, id); err != nil {
				return fmt.Errorf("failed to save folder %s: %w", id, err)
			}
		}
		return nil
	})
}

// RemoveFolder забывает папку вместе с ее сообщениями и ключом
func (s *SQLiteStorage) RemoveFolder(ctx context.Context, id string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM folders WHERE id = ?`,
			`DELETE FROM messages WHERE folder_id = ?`,
			`DELETE FROM sync_keys WHERE folder_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("failed to remove folder %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStorage) Folders(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM folders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SaveMessages сохраняет сообщения папки, повторная запись заменяет содержимое
func (s *SQLiteStorage) SaveMessages(ctx context.Context, folderID string, metas []*message.Meta) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		for _, m := range metas {
			if m == nil || m.ID == "" {
				continue
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO messages (id, folder_id, sender, receiver, type, content, time)
				VALUES (?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					sender = excluded.sender,
					receiver = excluded.receiver,
					type = excluded.type,
					content = excluded.content,
					time = excluded.time
			`, m.ID, folderID, m.From, m.To, int(m.Type), m.Content, m.Time)
			if err != nil {
				return fmt.Errorf("failed to save message %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// Messages последние limit сообщений папки по возрастанию времени
func (s *SQLiteStorage) Messages(ctx context.Context, folderID string, limit int) ([]*message.Meta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender, receiver, type, content, time FROM (
			SELECT * FROM messages WHERE folder_id = ? ORDER BY time DESC, id DESC LIMIT ?
		) ORDER BY time, id
	`, folderID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []*message.Meta
	for rows.Next() {
		var (
			m   message.Meta
			typ int
		)
		if err := rows.Scan(&m.ID, &m.From, &m.To, &typ, &m.Content, &m.Time); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Type = message.Type(typ)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
