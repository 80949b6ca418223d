package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per coaching session, summary filled on stop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			shots INTEGER NOT NULL DEFAULT 0,
			jumps INTEGER NOT NULL DEFAULT 0,
			avg_score REAL NOT NULL DEFAULT 0,
			avg_stability REAL NOT NULL DEFAULT 0,
			avg_explosivity REAL NOT NULL DEFAULT 0,
			avg_consistency REAL NOT NULL DEFAULT 0,
			dominant_hand TEXT NOT NULL DEFAULT 'right' CHECK(dominant_hand IN ('right', 'left'))
		)`,

		// Shots table - one row per detected release
		`CREATE TABLE IF NOT EXISTS shots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			score INTEGER NOT NULL,
			jump_height_cm REAL NOT NULL DEFAULT 0,
			explosivity INTEGER NOT NULL DEFAULT 0,
			stability INTEGER NOT NULL DEFAULT 0,
			elbow_angle REAL NOT NULL,
			knee_angle REAL NOT NULL,
			release_angle REAL NOT NULL,
			phase TEXT NOT NULL,
			taken_at DATETIME NOT NULL,
			UNIQUE(session_id, seq)
		)`,

		// Actions table - binds a coaching cue to a plugin action
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			cue TEXT NOT NULL UNIQUE,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_shots_session_id ON shots(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
