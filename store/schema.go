package store

import "golang.org/x/crypto/bcrypt"

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user',
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    last_login    TEXT,
    is_active     INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS clients (
    phone      TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    created_by TEXT NOT NULL DEFAULT '',
    updated_by TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS vins (
    vin_number      TEXT PRIMARY KEY,
    client_phone    TEXT NOT NULL REFERENCES clients(phone) ON DELETE CASCADE,
    model           TEXT NOT NULL DEFAULT '',
    production_year TEXT NOT NULL DEFAULT '',
    body            TEXT NOT NULL DEFAULT '',
    engine          TEXT NOT NULL DEFAULT '',
    code            TEXT NOT NULL DEFAULT '',
    transmission    TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    created_by      TEXT NOT NULL DEFAULT '',
    updated_by      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_vins_client ON vins(client_phone);

CREATE TABLE IF NOT EXISTS parts (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    vin_number   TEXT REFERENCES vins(vin_number) ON DELETE CASCADE,
    client_phone TEXT NOT NULL REFERENCES clients(phone) ON DELETE CASCADE,
    part_name    TEXT NOT NULL DEFAULT '',
    part_number  TEXT NOT NULL DEFAULT '',
    quantity     INTEGER NOT NULL DEFAULT 1,
    notes        TEXT NOT NULL DEFAULT '',
    date_added   TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    created_at   TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    created_by   TEXT NOT NULL DEFAULT '',
    updated_by   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_parts_vin ON parts(vin_number);
CREATE INDEX IF NOT EXISTS idx_parts_client ON parts(client_phone);

CREATE TABLE IF NOT EXISTS part_suppliers (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    part_id       INTEGER NOT NULL REFERENCES parts(id) ON DELETE CASCADE,
    supplier_name TEXT NOT NULL DEFAULT '',
    buying_price  REAL NOT NULL DEFAULT 0,
    selling_price REAL NOT NULL DEFAULT 0,
    delivery_time TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at    TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    created_by    TEXT NOT NULL DEFAULT '',
    updated_by    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_part_suppliers_part ON part_suppliers(part_id);

CREATE TABLE IF NOT EXISTS activity_log (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp  TEXT NOT NULL,
    username   TEXT NOT NULL DEFAULT '',
    action     TEXT NOT NULL,
    details    TEXT NOT NULL DEFAULT '',
    table_name TEXT,
    record_id  TEXT,
    old_values TEXT,
    new_values TEXT
);
CREATE INDEX IF NOT EXISTS idx_activity_username ON activity_log(username);
`

func (db *DB) migrate() error {
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	// Graceful migrations for existing DBs. The deposit/balance columns
	// moved off parts and onto the generated documents long ago.
	db.Exec("ALTER TABLE users ADD COLUMN is_active INTEGER NOT NULL DEFAULT 1")
	db.Exec("ALTER TABLE parts DROP COLUMN deposit")
	db.Exec("ALTER TABLE parts DROP COLUMN balance")

	return db.seedAdmin()
}

// seedAdmin creates the default admin account on a fresh database.
func (db *DB) seedAdmin() error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`INSERT OR IGNORE INTO users (username, password_hash, role) VALUES (?, ?, 'admin')`,
		"admin", string(hash))
	return err
}
