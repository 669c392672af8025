package history

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			notification_id INTEGER NOT NULL,
			app_name TEXT NOT NULL,
			desktop_entry TEXT,
			summary TEXT NOT NULL,
			body TEXT NOT NULL,
			plain_text TEXT NOT NULL,
			urgency INTEGER NOT NULL,
			links TEXT,
			received_at INTEGER NOT NULL,
			closed_at INTEGER,
			close_reason INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_received_at ON notifications(received_at);
		CREATE INDEX IF NOT EXISTS idx_notifications_notification_id ON notifications(notification_id);
		CREATE INDEX IF NOT EXISTS idx_notifications_app_name ON notifications(app_name);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
