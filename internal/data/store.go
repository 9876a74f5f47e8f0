package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/zeksm/telegram-to-sql/internal/biz/domain"
	"github.com/zeksm/telegram-to-sql/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Table names come from operator configuration and are interpolated
// into SQL, so they must be bare identifiers.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store implements ChatStore and MessageStore on SQLite. Schema
// verification happens at construction; a failure there is fatal for
// the process because every downstream invariant depends on the two
// tables existing.
type Store struct {
	db           *sql.DB
	chatTable    string
	messageTable string
}

// NewStore opens the database, bounds the connection pool and
// verifies or creates the chat and message tables.
func NewStore(dbPath, chatTable, messageTable string) (*Store, error) {
	if !identifierRe.MatchString(chatTable) {
		return nil, fmt.Errorf("invalid chat table name %q", chatTable)
	}
	if !identifierRe.MatchString(messageTable) {
		return nil, fmt.Errorf("invalid message table name %q", messageTable)
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)

	s := &Store{db: db, chatTable: chatTable, messageTable: messageTable}
	if err := s.verifySchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// verifySchema looks both tables up and creates the missing ones.
func (s *Store) verifySchema() error {
	tables := []struct {
		kind, name, schema string
	}{
		{"chat", s.chatTable, fmt.Sprintf(`CREATE TABLE %s (
			ID INTEGER NOT NULL PRIMARY KEY,
			Title TEXT,
			Username TEXT
		)`, s.chatTable)},
		{"message", s.messageTable, fmt.Sprintf(`CREATE TABLE %s (
			ID INTEGER PRIMARY KEY AUTOINCREMENT,
			Time DATETIME,
			Type TEXT,
			Chat INTEGER NOT NULL REFERENCES %s(ID),
			Sender TEXT,
			Message TEXT
		)`, s.messageTable, s.chatTable)},
	}

	for _, t := range tables {
		var name string
		err := s.db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, t.name,
		).Scan(&name)
		switch {
		case err == sql.ErrNoRows:
			fmt.Printf("[Store] Creating %s table (%s)\n", t.kind, t.name)
			if _, err := s.db.Exec(t.schema); err != nil {
				return fmt.Errorf("failed to create %s table %s: %w", t.kind, t.name, err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up %s table %s: %w", t.kind, t.name, err)
		default:
			fmt.Printf("[Store] Found %s table (%s)\n", t.kind, t.name)
		}
	}
	return nil
}

// ListMonitored reads all persisted monitored chats.
func (s *Store) ListMonitored(ctx context.Context) (map[int64]domain.MonitoredChat, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT ID, Title, Username FROM %s`, s.chatTable))
	if err != nil {
		return nil, fmt.Errorf("failed to list monitored chats: %w", err)
	}
	defer rows.Close()

	monitored := make(map[int64]domain.MonitoredChat)
	for rows.Next() {
		var mc domain.MonitoredChat
		if err := rows.Scan(&mc.ID, &mc.Title, &mc.Handle); err != nil {
			return nil, fmt.Errorf("failed to scan monitored chat: %w", err)
		}
		monitored[mc.ID] = mc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read monitored chats: %w", err)
	}
	return monitored, nil
}

// InsertMonitored adds one monitored chat row.
func (s *Store) InsertMonitored(ctx context.Context, chat domain.MonitoredChat) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (ID, Title, Username) VALUES (?, ?, ?)`, s.chatTable),
		chat.ID, chat.Title, chat.Handle)
	if err != nil {
		return fmt.Errorf("failed to insert monitored chat %d: %w", chat.ID, err)
	}
	return nil
}

// DeleteMonitored removes one monitored chat row. Message history
// referencing the id stays in place.
func (s *Store) DeleteMonitored(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE ID = ?`, s.chatTable), id)
	if err != nil {
		return fmt.Errorf("failed to delete monitored chat %d: %w", id, err)
	}
	return nil
}

// Append inserts one message record. The chat relation is enforced at
// insert time only: the guarded insert rejects records for chats that
// are not monitored, while deleting a chat row leaves its history in
// place.
func (s *Store) Append(ctx context.Context, rec *domain.MessageRecord) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (Time, Type, Chat, Sender, Message)
			SELECT ?, ?, ?, ?, ?
			WHERE EXISTS (SELECT 1 FROM %s WHERE ID = ?)`, s.messageTable, s.chatTable),
		rec.Time.Format("2006-01-02 15:04:05"),
		string(rec.Category),
		rec.ChatID,
		rec.Sender,
		rec.Body,
		rec.ChatID)
	if err != nil {
		return fmt.Errorf("failed to append message record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to append message record: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("message record references unmonitored chat %d", rec.ChatID)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var (
	_ repo.ChatStore    = (*Store)(nil)
	_ repo.MessageStore = (*Store)(nil)
)
