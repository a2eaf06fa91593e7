package store

import (
	"database/sql"
	"time"
)

// Vehicle is a VIN record owned by a client. VIN is nil for the
// placeholder row that buckets a client's "no VIN yet" parts.
type Vehicle struct {
	VIN            *string   `json:"vin_number"`
	ClientPhone    string    `json:"client_phone"`
	Model          string    `json:"model"`
	ProductionYear string    `json:"production_year"`
	Body           string    `json:"body"`
	Engine         string    `json:"engine"`
	Code           string    `json:"code"`
	Transmission   string    `json:"transmission"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	CreatedBy      string    `json:"created_by"`
	UpdatedBy      string    `json:"updated_by"`
}

const vehicleSelectCols = `vin_number, client_phone, model, production_year, body, engine,
	code, transmission, created_at, updated_at, created_by, updated_by`

// placeholderVINMatch matches VIN values that stand in for "no VIN":
// NULL, blank, or one of the legacy sentinel strings.
const placeholderVINMatch = `(vin_number IS NULL OR TRIM(vin_number) IN ('', 'None', 'none', 'No VIN provided'))`

func scanVehicle(row *sql.Row) (*Vehicle, error) {
	v := &Vehicle{}
	var vin sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&vin, &v.ClientPhone, &v.Model, &v.ProductionYear, &v.Body, &v.Engine,
		&v.Code, &v.Transmission, &createdAt, &updatedAt, &v.CreatedBy, &v.UpdatedBy)
	if err != nil {
		return nil, err
	}
	v.VIN = scanStrPtr(vin)
	v.CreatedAt = scanTime(createdAt)
	v.UpdatedAt = scanTime(updatedAt)
	return v, nil
}

func scanVehicles(rows *sql.Rows) ([]Vehicle, error) {
	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		var vin sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&vin, &v.ClientPhone, &v.Model, &v.ProductionYear, &v.Body, &v.Engine,
			&v.Code, &v.Transmission, &createdAt, &updatedAt, &v.CreatedBy, &v.UpdatedBy); err != nil {
			return nil, err
		}
		v.VIN = scanStrPtr(vin)
		v.CreatedAt = scanTime(createdAt)
		v.UpdatedAt = scanTime(updatedAt)
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (db *DB) GetVehicle(vin string) (*Vehicle, error) {
	return scanVehicle(db.QueryRow(`SELECT `+vehicleSelectCols+` FROM vins WHERE vin_number = ?`, vin))
}

// GetPlaceholderVehicle returns the client's no-VIN bucket row, if any.
func (db *DB) GetPlaceholderVehicle(clientPhone string) (*Vehicle, error) {
	return scanVehicle(db.QueryRow(
		`SELECT `+vehicleSelectCols+` FROM vins WHERE client_phone = ? AND `+placeholderVINMatch, clientPhone))
}

// CreateVehicle inserts a vehicle with INSERT OR IGNORE semantics keyed
// by VIN. Returns the number of rows actually inserted.
func (db *DB) CreateVehicle(v *Vehicle, by string) (int64, error) {
	res, err := db.Exec(`
		INSERT OR IGNORE INTO vins (vin_number, client_phone, model, production_year, body, engine, code, transmission, created_by, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullStr(v.VIN), v.ClientPhone, v.Model, v.ProductionYear, v.Body, v.Engine, v.Code, v.Transmission, by, by)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateVehicle rewrites a vehicle's details and, when the VIN itself
// changes, cascades the new VIN to dependent parts in one transaction.
// FK checks are deferred to commit: the parts still reference the old
// VIN while the vins row is being renamed.
func (db *DB) UpdateVehicle(oldVIN string, v *Vehicle, by string) error {
	return db.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`PRAGMA defer_foreign_keys = ON`); err != nil {
			return err
		}
		if _, err := tx.Exec(`
			UPDATE vins SET vin_number=?, model=?, production_year=?, body=?, engine=?, code=?, transmission=?, updated_at=?, updated_by=?
			WHERE vin_number=?`,
			nullStr(v.VIN), v.Model, v.ProductionYear, v.Body, v.Engine, v.Code, v.Transmission, now(), by, oldVIN); err != nil {
			return err
		}
		if v.VIN != nil && *v.VIN != oldVIN {
			if _, err := tx.Exec(`UPDATE parts SET vin_number=?, updated_by=? WHERE vin_number=?`,
				*v.VIN, by, oldVIN); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteVehicle deletes by exact VIN, optionally scoped to a client.
// Falls back to a trimmed, case-insensitive match when nothing matched,
// since legacy rows carry inconsistent casing. Returns rows deleted.
func (db *DB) DeleteVehicle(vin, clientPhone string) (int64, error) {
	var res sql.Result
	var err error
	if clientPhone != "" {
		res, err = db.Exec(`DELETE FROM vins WHERE client_phone = ? AND vin_number = ?`, clientPhone, vin)
	} else {
		res, err = db.Exec(`DELETE FROM vins WHERE vin_number = ?`, vin)
	}
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil || deleted > 0 {
		return deleted, err
	}

	if clientPhone != "" {
		res, err = db.Exec(`DELETE FROM vins WHERE client_phone = ? AND LOWER(TRIM(vin_number)) = LOWER(TRIM(?))`,
			clientPhone, vin)
	} else {
		res, err = db.Exec(`DELETE FROM vins WHERE LOWER(TRIM(vin_number)) = LOWER(TRIM(?))`, vin)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeletePlaceholderVehicle deletes the no-VIN bucket for one client.
// Placeholder rows are never deleted without a client scope. The
// bucket's parts are deleted explicitly in the same transaction: a NULL
// vin_number never matches an ON DELETE CASCADE.
func (db *DB) DeletePlaceholderVehicle(clientPhone string) (int64, error) {
	var deleted int64
	err := db.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM parts WHERE client_phone = ? AND `+placeholderVINMatch, clientPhone); err != nil {
			return err
		}
		res, err := tx.Exec(`DELETE FROM vins WHERE client_phone = ? AND `+placeholderVINMatch, clientPhone)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	return deleted, err
}

func (db *DB) ListVehiclesForClient(clientPhone string) ([]Vehicle, error) {
	rows, err := db.Query(`SELECT `+vehicleSelectCols+` FROM vins WHERE client_phone = ? ORDER BY created_at`, clientPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVehicles(rows)
}

// ListVehicles returns every vehicle, for export.
func (db *DB) ListVehicles() ([]Vehicle, error) {
	rows, err := db.Query(`SELECT ` + vehicleSelectCols + ` FROM vins ORDER BY client_phone, vin_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVehicles(rows)
}

func (db *DB) SearchVehicles(q string) ([]Vehicle, error) {
	pattern := "%" + q + "%"
	rows, err := db.Query(`SELECT `+vehicleSelectCols+` FROM vins WHERE vin_number LIKE ? OR model LIKE ?`,
		pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanVehicles(rows)
}
