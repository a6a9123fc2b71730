package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Runs: one row per conversion attempt
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,          -- uuid
    created_at TEXT NOT NULL,         -- UTC, fixed-width so it sorts lexically
    input_path TEXT NOT NULL,
    output_path TEXT,
    schema_variant TEXT NOT NULL,
    archive_sha256 TEXT,
    input_size_bytes INTEGER DEFAULT 0,

    -- Extraction counters
    exchange_count INTEGER DEFAULT 0,
    relevant_count INTEGER DEFAULT 0,
    consumable_count INTEGER DEFAULT 0,
    malformed_count INTEGER DEFAULT 0,
    candidate_count INTEGER DEFAULT 0,
    row_count INTEGER DEFAULT 0,

    status TEXT NOT NULL,             -- success, no_data, error
    error_message TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_sha ON runs(archive_sha256);

-- Run sources: candidate counts per container key within a run
CREATE TABLE IF NOT EXISTS run_sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    source TEXT NOT NULL,
    candidate_count INTEGER NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, source)
);

CREATE INDEX IF NOT EXISTS idx_run_sources_run ON run_sources(run_id);
`
