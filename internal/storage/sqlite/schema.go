package sqlite

// Schema holds the three graph collections. position preserves creation
// order; ids are not unique because hand-edited snapshots may repeat them.
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	position   INTEGER PRIMARY KEY,
	id         TEXT NOT NULL,
	type       TEXT NOT NULL,
	name       TEXT NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}',
	confidence REAL NOT NULL DEFAULT 1.0
);

CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);

CREATE TABLE IF NOT EXISTS relationships (
	position   INTEGER PRIMARY KEY,
	id         TEXT NOT NULL,
	type       TEXT NOT NULL,
	source     TEXT NOT NULL,
	target     TEXT NOT NULL,
	properties TEXT NOT NULL DEFAULT '{}',
	confidence REAL NOT NULL DEFAULT 1.0
);

CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target);

CREATE TABLE IF NOT EXISTS text_chunks (
	position INTEGER PRIMARY KEY,
	id       TEXT NOT NULL,
	text     TEXT NOT NULL,
	metadata TEXT NOT NULL DEFAULT '{}'
);
`
