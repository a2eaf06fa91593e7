package store

import (
	"database/sql"
	"time"
)

// Part is a part attached to a vehicle, or directly to a client when
// no VIN applies. ClientPhone is denormalized from the owning vehicle.
type Part struct {
	ID          int64     `json:"id"`
	VIN         *string   `json:"vin_number"`
	ClientPhone string    `json:"client_phone"`
	PartName    string    `json:"part_name"`
	PartNumber  string    `json:"part_number"`
	Quantity    int       `json:"quantity"`
	Notes       string    `json:"notes"`
	DateAdded   time.Time `json:"date_added"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
}

const partSelectCols = `id, vin_number, client_phone, part_name, part_number, quantity,
	notes, date_added, created_at, updated_at, created_by, updated_by`

func scanParts(rows *sql.Rows) ([]Part, error) {
	var parts []Part
	for rows.Next() {
		var p Part
		var vin sql.NullString
		var dateAdded, createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &vin, &p.ClientPhone, &p.PartName, &p.PartNumber, &p.Quantity,
			&p.Notes, &dateAdded, &createdAt, &updatedAt, &p.CreatedBy, &p.UpdatedBy); err != nil {
			return nil, err
		}
		p.VIN = scanStrPtr(vin)
		p.DateAdded = scanTime(dateAdded)
		p.CreatedAt = scanTime(createdAt)
		p.UpdatedAt = scanTime(updatedAt)
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (db *DB) GetPart(id int64) (*Part, error) {
	p := &Part{}
	var vin sql.NullString
	var dateAdded, createdAt, updatedAt string
	err := db.QueryRow(`SELECT `+partSelectCols+` FROM parts WHERE id = ?`, id).
		Scan(&p.ID, &vin, &p.ClientPhone, &p.PartName, &p.PartNumber, &p.Quantity,
			&p.Notes, &dateAdded, &createdAt, &updatedAt, &p.CreatedBy, &p.UpdatedBy)
	if err != nil {
		return nil, err
	}
	p.VIN = scanStrPtr(vin)
	p.DateAdded = scanTime(dateAdded)
	p.CreatedAt = scanTime(createdAt)
	p.UpdatedAt = scanTime(updatedAt)
	return p, nil
}

// CreatePart inserts a part together with its supplier quotes in one
// transaction, so a failed supplier insert leaves no orphan part.
func (db *DB) CreatePart(p *Part, suppliers []Supplier, by string) (int64, error) {
	var partID int64
	err := db.withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			INSERT INTO parts (vin_number, client_phone, part_name, part_number, quantity, notes, date_added, created_by, updated_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullStr(p.VIN), p.ClientPhone, p.PartName, p.PartNumber, p.Quantity, p.Notes, now(), by, by)
		if err != nil {
			return err
		}
		partID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for _, s := range suppliers {
			if _, err := tx.Exec(`
				INSERT INTO part_suppliers (part_id, supplier_name, buying_price, selling_price, delivery_time, created_by, updated_by)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				partID, s.SupplierName, s.BuyingPrice, s.SellingPrice, s.DeliveryTime, by, by); err != nil {
				return err
			}
		}
		return nil
	})
	return partID, err
}

// UpdatePart rewrites a part's fields and replaces its supplier set
// atomically.
func (db *DB) UpdatePart(id int64, name, number string, quantity int, notes string, suppliers []Supplier, by string) error {
	return db.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			UPDATE parts SET part_name=?, part_number=?, quantity=?, notes=?, updated_at=?, updated_by=? WHERE id=?`,
			name, number, quantity, notes, now(), by, id); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM part_suppliers WHERE part_id = ?`, id); err != nil {
			return err
		}
		for _, s := range suppliers {
			if _, err := tx.Exec(`
				INSERT INTO part_suppliers (part_id, supplier_name, buying_price, selling_price, delivery_time, created_by, updated_by)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				id, s.SupplierName, s.BuyingPrice, s.SellingPrice, s.DeliveryTime, by, by); err != nil {
				return err
			}
		}
		return nil
	})
}

// MovePart re-parents a part onto another vehicle and its owner.
func (db *DB) MovePart(id int64, vin, clientPhone, by string) error {
	_, err := db.Exec(`UPDATE parts SET vin_number=?, client_phone=?, updated_at=?, updated_by=? WHERE id=?`,
		vin, clientPhone, now(), by, id)
	return err
}

// DeletePart removes a part and, via cascade, its supplier quotes.
func (db *DB) DeletePart(id int64) (int64, error) {
	res, err := db.Exec(`DELETE FROM parts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (db *DB) ListPartsForVehicle(vin string) ([]Part, error) {
	rows, err := db.Query(`SELECT `+partSelectCols+` FROM parts WHERE vin_number = ? ORDER BY id`, vin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParts(rows)
}

// ListPartsWithoutVIN returns a client's parts that sit in the no-VIN
// bucket, including legacy sentinel values.
func (db *DB) ListPartsWithoutVIN(clientPhone string) ([]Part, error) {
	rows, err := db.Query(`SELECT `+partSelectCols+` FROM parts WHERE client_phone = ? AND `+placeholderVINMatch+` ORDER BY id`,
		clientPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParts(rows)
}

func (db *DB) ListPartsForClient(clientPhone string) ([]Part, error) {
	rows, err := db.Query(`SELECT `+partSelectCols+` FROM parts WHERE client_phone = ? ORDER BY id`, clientPhone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParts(rows)
}

// ListParts returns every part, for export.
func (db *DB) ListParts() ([]Part, error) {
	rows, err := db.Query(`SELECT ` + partSelectCols + ` FROM parts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParts(rows)
}

// ListPartsPage returns one page of parts, most recently updated first.
func (db *DB) ListPartsPage(limit, offset int) ([]Part, error) {
	rows, err := db.Query(`SELECT `+partSelectCols+` FROM parts ORDER BY updated_at DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParts(rows)
}

func (db *DB) SearchParts(q string) ([]Part, error) {
	pattern := "%" + q + "%"
	rows, err := db.Query(`SELECT `+partSelectCols+` FROM parts WHERE part_name LIKE ? OR part_number LIKE ? OR notes LIKE ?`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParts(rows)
}

func (db *DB) CountParts() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM parts`).Scan(&n)
	return n, err
}
