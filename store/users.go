package store

import (
	"database/sql"
	"time"
)

// User is an account that can sign in. Role is "user" or "admin".
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
	IsActive     bool       `json:"is_active"`
}

const userSelectCols = `id, username, password_hash, role, created_at, last_login, COALESCE(is_active, 1)`

func (db *DB) GetUser(username string) (*User, error) {
	u := &User{}
	var createdAt string
	var lastLogin sql.NullString
	err := db.QueryRow(`SELECT `+userSelectCols+` FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &createdAt, &lastLogin, &u.IsActive)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = scanTime(createdAt)
	u.LastLogin = scanTimePtr(lastLogin)
	return u, nil
}

func (db *DB) CreateUser(username, passwordHash, role string) (int64, error) {
	res, err := db.Exec(`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`,
		username, passwordHash, role)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) UpdateUserPassword(username, passwordHash string) (int64, error) {
	res, err := db.Exec(`UPDATE users SET password_hash = ? WHERE username = ?`, passwordHash, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (db *DB) UpdateUserRole(username, role string) (int64, error) {
	res, err := db.Exec(`UPDATE users SET role = ? WHERE username = ?`, role, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (db *DB) SetUserActive(username string, active bool) (int64, error) {
	res, err := db.Exec(`UPDATE users SET is_active = ? WHERE username = ?`, active, username)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TouchLastLogin stamps a successful login.
func (db *DB) TouchLastLogin(username string) error {
	_, err := db.Exec(`UPDATE users SET last_login = ? WHERE username = ?`, now(), username)
	return err
}

// CountActiveAdmins backs the last-admin guard.
func (db *DB) CountActiveAdmins() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = 'admin' AND COALESCE(is_active, 1) = 1`).Scan(&n)
	return n, err
}

func (db *DB) ListUsers() ([]User, error) {
	rows, err := db.Query(`SELECT ` + userSelectCols + ` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		var createdAt string
		var lastLogin sql.NullString
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &createdAt, &lastLogin, &u.IsActive); err != nil {
			return nil, err
		}
		u.CreatedAt = scanTime(createdAt)
		u.LastLogin = scanTimePtr(lastLogin)
		users = append(users, u)
	}
	return users, rows.Err()
}
