package db

// Schema is the DDL for the ticket cache.
const Schema = `
CREATE TABLE IF NOT EXISTS tickets (
    id                TEXT PRIMARY KEY,
    position          INTEGER NOT NULL,
    title             TEXT NOT NULL,
    summary           TEXT,
    status            TEXT NOT NULL,
    area              TEXT,
    app               TEXT,
    type              TEXT,
    priority          TEXT,
    blocked_by        TEXT NOT NULL DEFAULT '[]',
    blocks            TEXT NOT NULL DEFAULT '[]',
    branch            TEXT,
    commit_sha        TEXT,
    feature           TEXT,
    link              TEXT,
    resolved_at       TEXT,
    assignees         TEXT NOT NULL DEFAULT '[]',
    created_time      TEXT,
    last_edited_time  TEXT,
    eligible          INTEGER NOT NULL DEFAULT 0,
    synced_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id          TEXT PRIMARY KEY,
    synced_at   TEXT NOT NULL,
    fetched     INTEGER NOT NULL,
    queued      INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
CREATE INDEX IF NOT EXISTS idx_tickets_app ON tickets(app);
CREATE INDEX IF NOT EXISTS idx_tickets_priority ON tickets(priority);
CREATE INDEX IF NOT EXISTS idx_sync_runs_synced ON sync_runs(synced_at DESC);
`
