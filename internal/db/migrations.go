package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id           TEXT NOT NULL,
			title             TEXT NOT NULL,
			description       TEXT DEFAULT '',
			priority          TEXT NOT NULL CHECK(priority IN ('urgent', 'high', 'medium', 'low')),
			energy            TEXT CHECK(energy IN ('', 'high', 'medium', 'low')),
			context           TEXT CHECK(context IN ('', 'pc_required', 'anywhere', 'home_only', 'office_only', 'phone_only')),
			estimated_minutes INTEGER DEFAULT 0,
			status            TEXT DEFAULT 'todo' CHECK(status IN ('todo', 'in_progress', 'review', 'completed', 'cancelled')),
			labels            TEXT DEFAULT '',
			due               DATETIME,
			created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS timeline_slots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			task_id          INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			user_id          TEXT NOT NULL,
			start_time       DATETIME NOT NULL,
			end_time         DATETIME NOT NULL,
			slot_date        DATE NOT NULL,
			status           TEXT DEFAULT 'scheduled' CHECK(status IN ('scheduled', 'in_progress', 'completed', 'cancelled')),
			actual_start     DATETIME,
			actual_end       DATETIME,
			calendar_sync_id TEXT DEFAULT '',
			created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS time_blocks (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id       TEXT NOT NULL,
			start_hour    INTEGER NOT NULL,
			end_hour      INTEGER NOT NULL,
			energy        TEXT CHECK(energy IN ('', 'high', 'medium', 'low')),
			is_work_time  INTEGER DEFAULT 0,
			is_break_time INTEGER DEFAULT 0,
			label         TEXT NOT NULL,
			description   TEXT DEFAULT '',
			color         TEXT DEFAULT '',
			days_of_week  TEXT DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks(user_id, status);
		CREATE INDEX IF NOT EXISTS idx_slots_date ON timeline_slots(slot_date, user_id);
		CREATE INDEX IF NOT EXISTS idx_slots_task ON timeline_slots(task_id);
		CREATE INDEX IF NOT EXISTS idx_blocks_user ON time_blocks(user_id);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
