package sqlite

const safoaiSchema = `
CREATE TABLE IF NOT EXISTS waitlist (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT UNIQUE NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'invited', 'joined')),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	invited_at TIMESTAMP,
	joined_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_waitlist_status ON waitlist(status);

CREATE TABLE IF NOT EXISTS notifications (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL CHECK(kind IN ('welcome', 'invitation', 'joined')),
	entry_id INTEGER REFERENCES waitlist(id) ON DELETE SET NULL,
	recipient TEXT NOT NULL,
	subject TEXT NOT NULL,
	html_body TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'sent', 'failed')),
	attempts INTEGER NOT NULL DEFAULT 0,
	last_error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_status ON notifications(status);
`

const pomegridSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	department TEXT NOT NULL,
	email TEXT UNIQUE NOT NULL,
	phone TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	created_by INTEGER REFERENCES users(id),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
