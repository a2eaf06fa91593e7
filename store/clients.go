package store

import (
	"database/sql"
	"time"
)

// Client is a customer record keyed by phone number.
type Client struct {
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
}

const clientSelectCols = `phone, name, created_at, updated_at, created_by, updated_by`

func scanClients(rows *sql.Rows) ([]Client, error) {
	var clients []Client
	for rows.Next() {
		var c Client
		var createdAt, updatedAt string
		if err := rows.Scan(&c.Phone, &c.Name, &createdAt, &updatedAt, &c.CreatedBy, &c.UpdatedBy); err != nil {
			return nil, err
		}
		c.CreatedAt = scanTime(createdAt)
		c.UpdatedAt = scanTime(updatedAt)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (db *DB) GetClient(phone string) (*Client, error) {
	c := &Client{}
	var createdAt, updatedAt string
	err := db.QueryRow(`SELECT `+clientSelectCols+` FROM clients WHERE phone = ?`, phone).
		Scan(&c.Phone, &c.Name, &createdAt, &updatedAt, &c.CreatedBy, &c.UpdatedBy)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = scanTime(createdAt)
	c.UpdatedAt = scanTime(updatedAt)
	return c, nil
}

func (db *DB) CreateClient(phone, name, by string) error {
	_, err := db.Exec(`INSERT INTO clients (phone, name, created_by, updated_by) VALUES (?, ?, ?, ?)`,
		phone, name, by, by)
	return err
}

// RenameClient changes a client's phone (its primary key) and display
// name, cascading the new phone to every owned vehicle and part in one
// transaction. SQLite does not propagate primary-key renames itself,
// and the FKs are immediate, so checks are deferred to commit while the
// parent and children are updated in turn.
func (db *DB) RenameClient(oldPhone, newPhone, newName, by string) error {
	return db.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`PRAGMA defer_foreign_keys = ON`); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE clients SET phone=?, name=?, updated_at=?, updated_by=? WHERE phone=?`,
			newPhone, newName, now(), by, oldPhone); err != nil {
			return err
		}
		if _, err := tx.Exec(`UPDATE vins SET client_phone=?, updated_by=? WHERE client_phone=?`,
			newPhone, by, oldPhone); err != nil {
			return err
		}
		_, err := tx.Exec(`UPDATE parts SET client_phone=?, updated_by=? WHERE client_phone=?`,
			newPhone, by, oldPhone)
		return err
	})
}

// DeleteClient removes a client; vehicles, parts and supplier quotes go
// with it via cascade. Returns the number of client rows deleted.
func (db *DB) DeleteClient(phone string) (int64, error) {
	res, err := db.Exec(`DELETE FROM clients WHERE phone = ?`, phone)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListClients returns every client, for export.
func (db *DB) ListClients() ([]Client, error) {
	rows, err := db.Query(`SELECT ` + clientSelectCols + ` FROM clients ORDER BY phone`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

// ListClientsPage returns one page of clients, most recently updated first.
func (db *DB) ListClientsPage(limit, offset int) ([]Client, error) {
	rows, err := db.Query(`SELECT `+clientSelectCols+` FROM clients ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

func (db *DB) SearchClients(q string) ([]Client, error) {
	pattern := "%" + q + "%"
	rows, err := db.Query(`SELECT `+clientSelectCols+` FROM clients WHERE phone LIKE ? OR name LIKE ?`,
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanClients(rows)
}

func (db *DB) CountClients() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM clients`).Scan(&n)
	return n, err
}
