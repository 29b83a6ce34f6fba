package storage

// migration is one schema version applied atomically.
type migration struct {
	version    int
	name       string
	statements []string
}

// migrations must stay append-only: applied versions are never re-run.
var migrations = []migration{
	{
		version: 1,
		name:    "study core",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS study_settings (
				user_id TEXT PRIMARY KEY,
				algorithm_type TEXT NOT NULL DEFAULT 'LEITNER',
				new_cards_per_day INTEGER NOT NULL DEFAULT 20,
				max_reviews_per_session INTEGER NOT NULL DEFAULT 0,
				desired_retention DOUBLE PRECISION NOT NULL DEFAULT 0.9,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS study_subjects (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS study_books (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS study_courses (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS study_projects (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			// Decks may hang off a subject, book, course or project; topics reach cards through it.
			`CREATE TABLE IF NOT EXISTS study_decks (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				parent_type TEXT,
				parent_id TEXT,
				source TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL,
				UNIQUE (user_id, name)
			)`,
			`CREATE TABLE IF NOT EXISTS study_flashcards (
				id TEXT PRIMARY KEY,
				deck_id TEXT NOT NULL REFERENCES study_decks(id) ON DELETE CASCADE,
				front TEXT NOT NULL,
				back TEXT NOT NULL DEFAULT '',
				context TEXT NOT NULL DEFAULT '',
				content_hash TEXT NOT NULL,
				stage TEXT NOT NULL DEFAULT 'NEW',
				next_review_at TIMESTAMP,
				interval_days DOUBLE PRECISION NOT NULL DEFAULT 0,
				ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
				review_count INTEGER NOT NULL DEFAULT 0,
				lapses INTEGER NOT NULL DEFAULT 0,
				stability DOUBLE PRECISION NOT NULL DEFAULT 0,
				difficulty DOUBLE PRECISION NOT NULL DEFAULT 0,
				retrievability DOUBLE PRECISION NOT NULL DEFAULT 0,
				last_review_at TIMESTAMP,
				suspended BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE (deck_id, content_hash),
				CHECK (next_review_at IS NOT NULL OR (stage = 'NEW' AND review_count = 0))
			)`,
			`CREATE TABLE IF NOT EXISTS study_review_sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				deck_id TEXT REFERENCES study_decks(id) ON DELETE SET NULL,
				algorithm_type TEXT NOT NULL,
				status TEXT NOT NULL,
				started_at TIMESTAMP NOT NULL,
				finished_at TIMESTAMP,
				total_cards INTEGER NOT NULL DEFAULT 0,
				cards_reviewed INTEGER NOT NULL DEFAULT 0,
				cards_correct INTEGER NOT NULL DEFAULT 0,
				score DOUBLE PRECISION NOT NULL DEFAULT 0,
				CHECK (cards_reviewed <= total_cards),
				CHECK ((status = 'IN_PROGRESS') = (finished_at IS NULL))
			)`,
			`CREATE TABLE IF NOT EXISTS study_session_cards (
				session_id TEXT NOT NULL REFERENCES study_review_sessions(id) ON DELETE CASCADE,
				flashcard_id TEXT NOT NULL REFERENCES study_flashcards(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				state TEXT NOT NULL DEFAULT 'PENDING',
				PRIMARY KEY (session_id, flashcard_id)
			)`,
			`CREATE TABLE IF NOT EXISTS study_review_logs (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL REFERENCES study_review_sessions(id) ON DELETE CASCADE,
				flashcard_id TEXT NOT NULL REFERENCES study_flashcards(id) ON DELETE CASCADE,
				rating TEXT NOT NULL,
				time_spent_seconds INTEGER NOT NULL DEFAULT 0,
				reviewed_at TIMESTAMP NOT NULL,
				prior_stage TEXT NOT NULL,
				prior_interval_days DOUBLE PRECISION NOT NULL DEFAULT 0,
				interval_days DOUBLE PRECISION NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS study_topics (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				parent_type TEXT,
				parent_id TEXT,
				retention_rating INTEGER,
				status TEXT NOT NULL DEFAULT 'TO_LEARN',
				last_reviewed_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS study_retention_logs (
				id TEXT PRIMARY KEY,
				topic_id TEXT NOT NULL REFERENCES study_topics(id) ON DELETE CASCADE,
				rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
				evaluated_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_flashcards_deck_due ON study_flashcards(deck_id, next_review_at)`,
			`CREATE INDEX IF NOT EXISTS idx_decks_parent ON study_decks(parent_type, parent_id)`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_user_status ON study_review_sessions(user_id, status)`,
			`CREATE INDEX IF NOT EXISTS idx_review_logs_session ON study_review_logs(session_id, reviewed_at)`,
			`CREATE INDEX IF NOT EXISTS idx_review_logs_card ON study_review_logs(flashcard_id, reviewed_at)`,
			`CREATE INDEX IF NOT EXISTS idx_topics_user ON study_topics(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_retention_logs_topic ON study_retention_logs(topic_id, evaluated_at)`,
		},
	},
}
