// Package history persists delivered notifications in SQLite so they can
// be listed after they expire.
package history

import (
	"database/sql"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"

	dbutil "github.com/llehouerou/notifyd/internal/db"
)

const (
	appName    = "notifyd"
	dbFileName = "history.db"

	// DefaultLimit is how many entries List returns when no limit is set.
	DefaultLimit = 20
)

// Entry is one recorded notification.
type Entry struct {
	ID             int64 // row id, increasing with insertion order
	NotificationID uint32
	AppName        string
	DesktopEntry   string
	Summary        string
	Body           string // raw body as received
	PlainText      string
	Urgency        int
	Links          []string // safe link URLs
	Received       time.Time
	Closed         *time.Time // nil while open
	CloseReason    int        // 0 while open
}

// Filter selects entries for List.
type Filter struct {
	AppName string // matches app_name or desktop_entry; empty = all
	Limit   int    // <= 0 = DefaultLimit
}

// Manager owns the history database.
type Manager struct {
	db         *sql.DB
	maxEntries atomic.Int64
}

// DefaultPath returns $XDG_DATA_HOME/notifyd/history.db.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens the history at path, or at DefaultPath when path is empty,
// keeping at most maxEntries rows.
func Open(path string, maxEntries int) (*Manager, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	db, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	m := &Manager{db: db}
	m.SetMaxEntries(maxEntries)
	return m, nil
}

// SetMaxEntries changes the retention limit. The next Record prunes to it.
func (m *Manager) SetMaxEntries(n int) {
	m.maxEntries.Store(int64(max(n, 1)))
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// Record inserts e and prunes the oldest rows beyond the retention limit.
// It returns the new row id.
func (m *Manager) Record(e Entry) (int64, error) {
	var id int64
	err := dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO notifications (
				notification_id, app_name, desktop_entry, summary, body,
				plain_text, urgency, links, received_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.NotificationID, e.AppName, dbutil.NullString(e.DesktopEntry), e.Summary, e.Body,
			e.PlainText, e.Urgency, dbutil.NullString(strings.Join(e.Links, "\n")), e.Received.UnixMilli())
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM notifications WHERE id <= (
				SELECT id FROM notifications ORDER BY id DESC LIMIT 1 OFFSET ?
			)
		`, m.maxEntries.Load())
		return err
	})
	return id, err
}

// MarkClosed records when and why the latest open entry with the given
// notification id closed. Unknown ids are ignored.
func (m *Manager) MarkClosed(notificationID uint32, reason int, at time.Time) error {
	_, err := m.db.Exec(`
		UPDATE notifications SET closed_at = ?, close_reason = ?
		WHERE id = (
			SELECT id FROM notifications
			WHERE notification_id = ? AND closed_at IS NULL
			ORDER BY id DESC LIMIT 1
		)
	`, at.UnixMilli(), reason, notificationID)
	return err
}

// List returns matching entries, newest first.
func (m *Manager) List(f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
		SELECT id, notification_id, app_name, desktop_entry, summary, body,
			plain_text, urgency, links, received_at, closed_at, close_reason
		FROM notifications`
	args := []any{}
	if f.AppName != "" {
		query += ` WHERE app_name = ? OR desktop_entry = ?`
		args = append(args, f.AppName, f.AppName)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var desktopEntry, links sql.NullString
		var received int64
		var closed, reason sql.NullInt64

		err := rows.Scan(&e.ID, &e.NotificationID, &e.AppName, &desktopEntry, &e.Summary, &e.Body,
			&e.PlainText, &e.Urgency, &links, &received, &closed, &reason)
		if err != nil {
			return nil, err
		}

		e.DesktopEntry = dbutil.NullStringValue(desktopEntry)
		if s := dbutil.NullStringValue(links); s != "" {
			e.Links = strings.Split(s, "\n")
		}
		e.Received = time.UnixMilli(received)
		e.Closed = dbutil.NullMillisToTime(closed)
		e.CloseReason = int(dbutil.NullInt64Value(reason))
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (m *Manager) Count() (int, error) {
	var n int
	err := m.db.QueryRow(`SELECT COUNT(*) FROM notifications`).Scan(&n)
	return n, err
}

// Clear deletes every entry and returns how many were removed.
func (m *Manager) Clear() (int64, error) {
	res, err := m.db.Exec(`DELETE FROM notifications`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
