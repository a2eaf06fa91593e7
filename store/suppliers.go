package store

import (
	"database/sql"
	"time"
)

// Supplier is a price quote from one supplier for one part.
type Supplier struct {
	ID           int64     `json:"id"`
	PartID       int64     `json:"part_id"`
	SupplierName string    `json:"supplier_name"`
	BuyingPrice  float64   `json:"buying_price"`
	SellingPrice float64   `json:"selling_price"`
	DeliveryTime string    `json:"delivery_time"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CreatedBy    string    `json:"created_by"`
	UpdatedBy    string    `json:"updated_by"`
}

const supplierSelectCols = `id, part_id, supplier_name, buying_price, selling_price,
	delivery_time, created_at, updated_at, created_by, updated_by`

func scanSuppliers(rows *sql.Rows) ([]Supplier, error) {
	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.PartID, &s.SupplierName, &s.BuyingPrice, &s.SellingPrice,
			&s.DeliveryTime, &createdAt, &updatedAt, &s.CreatedBy, &s.UpdatedBy); err != nil {
			return nil, err
		}
		s.CreatedAt = scanTime(createdAt)
		s.UpdatedAt = scanTime(updatedAt)
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (db *DB) GetSupplier(id int64) (*Supplier, error) {
	s := &Supplier{}
	var createdAt, updatedAt string
	err := db.QueryRow(`SELECT `+supplierSelectCols+` FROM part_suppliers WHERE id = ?`, id).
		Scan(&s.ID, &s.PartID, &s.SupplierName, &s.BuyingPrice, &s.SellingPrice,
			&s.DeliveryTime, &createdAt, &updatedAt, &s.CreatedBy, &s.UpdatedBy)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = scanTime(createdAt)
	s.UpdatedAt = scanTime(updatedAt)
	return s, nil
}

func (db *DB) CreateSupplier(s *Supplier, by string) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO part_suppliers (part_id, supplier_name, buying_price, selling_price, delivery_time, created_by, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.PartID, s.SupplierName, s.BuyingPrice, s.SellingPrice, s.DeliveryTime, by, by)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (db *DB) UpdateSupplier(id int64, name string, buying, selling float64, deliveryTime, by string) (int64, error) {
	res, err := db.Exec(`
		UPDATE part_suppliers SET supplier_name=?, buying_price=?, selling_price=?, delivery_time=?, updated_at=?, updated_by=?
		WHERE id=?`,
		name, buying, selling, deliveryTime, now(), by, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (db *DB) DeleteSupplier(id int64) (int64, error) {
	res, err := db.Exec(`DELETE FROM part_suppliers WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (db *DB) ListSuppliersForPart(partID int64) ([]Supplier, error) {
	rows, err := db.Query(`SELECT `+supplierSelectCols+` FROM part_suppliers WHERE part_id = ? ORDER BY supplier_name`, partID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuppliers(rows)
}

// ListSuppliersForParts returns quotes for a set of part ids, for the
// transitively filtered export.
func (db *DB) ListSuppliersForParts(partIDs []int64) ([]Supplier, error) {
	if len(partIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + supplierSelectCols + ` FROM part_suppliers WHERE part_id IN (?`
	args := []any{partIDs[0]}
	for _, id := range partIDs[1:] {
		query += ",?"
		args = append(args, id)
	}
	query += `) ORDER BY id`
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuppliers(rows)
}

// ListSuppliers returns every supplier quote, for export.
func (db *DB) ListSuppliers() ([]Supplier, error) {
	rows, err := db.Query(`SELECT ` + supplierSelectCols + ` FROM part_suppliers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSuppliers(rows)
}
