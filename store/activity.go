package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ActivityEntry is one append-only audit record. Entities are referenced
// by denormalized identifier strings since the rows they describe may be
// deleted later. No update or delete is ever exposed for this table.
type ActivityEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	TableName *string   `json:"table_name"`
	RecordID  *string   `json:"record_id"`
	OldValues *string   `json:"old_values"`
	NewValues *string   `json:"new_values"`
}

// LogActivity appends one audit entry with a server-generated timestamp.
// oldValues and newValues are serialized to JSON when non-nil.
func (db *DB) LogActivity(username, action, details string, tableName, recordID *string, oldValues, newValues any) error {
	old, err := marshalSnapshot(oldValues)
	if err != nil {
		return err
	}
	new_, err := marshalSnapshot(newValues)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO activity_log (timestamp, username, action, details, table_name, record_id, old_values, new_values)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		now(), username, action, details, nullStr(tableName), nullStr(recordID), old, new_)
	return err
}

func marshalSnapshot(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// GetActivityLogs returns recent entries newest first, optionally
// filtered by username.
func (db *DB) GetActivityLogs(username string, limit int) ([]ActivityEntry, error) {
	query := `SELECT id, timestamp, username, action, details, table_name, record_id, old_values, new_values FROM activity_log`
	var args []any
	if username != "" {
		query += ` WHERE username = ?`
		args = append(args, username)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var ts string
		var tableName, recordID, old, new_ sql.NullString
		if err := rows.Scan(&e.ID, &ts, &e.Username, &e.Action, &e.Details, &tableName, &recordID, &old, &new_); err != nil {
			return nil, err
		}
		e.Timestamp = scanTime(ts)
		e.TableName = scanStrPtr(tableName)
		e.RecordID = scanStrPtr(recordID)
		e.OldValues = scanStrPtr(old)
		e.NewValues = scanStrPtr(new_)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountActivityFor reports how many entries exist for an action, used
// by tests and the admin dashboard.
func (db *DB) CountActivityFor(action string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM activity_log WHERE action = ?`, action).Scan(&n)
	return n, err
}
