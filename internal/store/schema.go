package store

const schema = `
CREATE TABLE IF NOT EXISTS applications (
    position INTEGER PRIMARY KEY,
    package_id TEXT NOT NULL,
    display_name TEXT,
    is_system BOOLEAN NOT NULL DEFAULT 0,
    icon_ref TEXT,
    resolved BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS application_permissions (
    package_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    permission TEXT NOT NULL,
    PRIMARY KEY (package_id, position)
);

CREATE TABLE IF NOT EXISTS usage_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package_id TEXT NOT NULL,
    last_used_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS imports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    imported_at TIMESTAMP NOT NULL,
    source TEXT NOT NULL,
    captured_at INTEGER,
    application_count INTEGER,
    usage_count INTEGER
);

CREATE INDEX IF NOT EXISTS idx_applications_package ON applications(package_id);
CREATE INDEX IF NOT EXISTS idx_usage_last_used ON usage_records(last_used_at);
`
