package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// OAuth tokens, one row per sync platform
		`CREATE TABLE IF NOT EXISTS credentials (
			platform TEXT PRIMARY KEY,
			account_id INTEGER NOT NULL DEFAULT 0,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Workouts keep numeric fields as the text they were logged with;
		// the analytics parse them permissively.
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			status TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			run_distance TEXT NOT NULL DEFAULT '',
			run_duration TEXT NOT NULL DEFAULT '',
			run_pace TEXT NOT NULL DEFAULT '',
			run_heart_rate TEXT NOT NULL DEFAULT '',
			calories TEXT NOT NULL DEFAULT '',
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_workouts_date ON workouts(date)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_type ON workouts(type)`,

		// Strength exercises, in logged order
		`CREATE TABLE IF NOT EXISTS exercises (
			workout_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			sets TEXT NOT NULL DEFAULT '',
			reps TEXT NOT NULL DEFAULT '',
			weight TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (workout_id, position),
			FOREIGN KEY (workout_id) REFERENCES workouts(id) ON DELETE CASCADE
		)`,

		// Body measurements, one per day
		`CREATE TABLE IF NOT EXISTS body_logs (
			date TEXT PRIMARY KEY,
			weight TEXT NOT NULL DEFAULT '',
			body_fat TEXT NOT NULL DEFAULT '',
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sync State (key-value store for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
