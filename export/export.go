// Package export produces bulk extracts of the database: a zip of CSV
// files or a multi-sheet spreadsheet, plus raw file backups.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"partsdesk/store"
)

// Table names accepted in an include list, in output order.
var exportTables = []string{"clients", "vins", "parts", "part_suppliers"}

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"

	MimeZip  = "application/zip"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Options selects tables and row filters for an export.
type Options struct {
	// Include limits the exported tables; empty means all four.
	Include []string `json:"include"`
	// ClientPhone filters clients by key and vins/parts by owner.
	ClientPhone string `json:"client_phone"`
	// VINNumber filters vins by key and parts by vehicle.
	VINNumber string `json:"vin_number"`
}

type table struct {
	name   string
	header []string
	rows   [][]string
}

// Filtered loads the included tables, applies the equality filters, and
// serializes them in the requested format. Supplier quotes are filtered
// transitively through the filtered parts set.
func Filtered(db *store.DB, opts Options, format string) ([]byte, string, error) {
	include := map[string]bool{}
	if len(opts.Include) == 0 {
		opts.Include = exportTables
	}
	for _, t := range opts.Include {
		include[t] = true
	}

	var tables []table
	for _, name := range exportTables {
		if !include[name] {
			continue
		}
		t, err := loadTable(db, name, opts)
		if err != nil {
			return nil, "", fmt.Errorf("export %s: %w", name, err)
		}
		tables = append(tables, t)
	}

	switch format {
	case FormatExcel:
		data, err := writeXLSX(tables)
		return data, MimeXLSX, err
	default:
		data, err := writeZip(tables)
		return data, MimeZip, err
	}
}

func loadTable(db *store.DB, name string, opts Options) (table, error) {
	switch name {
	case "clients":
		clients, err := db.ListClients()
		if err != nil {
			return table{}, err
		}
		t := table{name: name, header: []string{
			"phone", "name", "created_at", "updated_at", "created_by", "updated_by"}}
		for _, c := range clients {
			if opts.ClientPhone != "" && c.Phone != opts.ClientPhone {
				continue
			}
			t.rows = append(t.rows, []string{
				c.Phone, c.Name, fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt), c.CreatedBy, c.UpdatedBy})
		}
		return t, nil

	case "vins":
		vehicles, err := db.ListVehicles()
		if err != nil {
			return table{}, err
		}
		t := table{name: name, header: []string{
			"vin_number", "client_phone", "model", "production_year", "body", "engine",
			"code", "transmission", "created_at", "updated_at", "created_by", "updated_by"}}
		for _, v := range vehicles {
			if opts.ClientPhone != "" && v.ClientPhone != opts.ClientPhone {
				continue
			}
			if opts.VINNumber != "" && (v.VIN == nil || *v.VIN != opts.VINNumber) {
				continue
			}
			t.rows = append(t.rows, []string{
				deref(v.VIN), v.ClientPhone, v.Model, v.ProductionYear, v.Body, v.Engine,
				v.Code, v.Transmission, fmtTime(v.CreatedAt), fmtTime(v.UpdatedAt), v.CreatedBy, v.UpdatedBy})
		}
		return t, nil

	case "parts":
		t, _, err := loadParts(db, opts)
		return t, err

	case "part_suppliers":
		_, partIDs, err := loadParts(db, opts)
		if err != nil {
			return table{}, err
		}
		suppliers, err := db.ListSuppliersForParts(partIDs)
		if err != nil {
			return table{}, err
		}
		t := table{name: name, header: []string{
			"id", "part_id", "supplier_name", "buying_price", "selling_price", "delivery_time",
			"created_at", "updated_at", "created_by", "updated_by"}}
		for _, s := range suppliers {
			t.rows = append(t.rows, []string{
				strconv.FormatInt(s.ID, 10), strconv.FormatInt(s.PartID, 10), s.SupplierName,
				fmtPrice(s.BuyingPrice), fmtPrice(s.SellingPrice), s.DeliveryTime,
				fmtTime(s.CreatedAt), fmtTime(s.UpdatedAt), s.CreatedBy, s.UpdatedBy})
		}
		return t, nil
	}
	return table{}, fmt.Errorf("unknown table %q", name)
}

func loadParts(db *store.DB, opts Options) (table, []int64, error) {
	parts, err := db.ListParts()
	if err != nil {
		return table{}, nil, err
	}
	t := table{name: "parts", header: []string{
		"id", "vin_number", "client_phone", "part_name", "part_number", "quantity", "notes",
		"date_added", "created_at", "updated_at", "created_by", "updated_by"}}
	var ids []int64
	for _, p := range parts {
		if opts.ClientPhone != "" && p.ClientPhone != opts.ClientPhone {
			continue
		}
		if opts.VINNumber != "" && (p.VIN == nil || *p.VIN != opts.VINNumber) {
			continue
		}
		ids = append(ids, p.ID)
		t.rows = append(t.rows, []string{
			strconv.FormatInt(p.ID, 10), deref(p.VIN), p.ClientPhone, p.PartName, p.PartNumber,
			strconv.Itoa(p.Quantity), p.Notes, fmtTime(p.DateAdded),
			fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt), p.CreatedBy, p.UpdatedBy})
	}
	return t, ids, nil
}

// writeZip produces a compressed archive with one <table>.csv per table.
func writeZip(tables []table) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, t := range tables {
		f, err := zw.Create(t.name + ".csv")
		if err != nil {
			return nil, err
		}
		cw := csv.NewWriter(f)
		if err := cw.Write(t.header); err != nil {
			return nil, err
		}
		if err := cw.WriteAll(t.rows); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeXLSX produces one workbook with a sheet per table. Sheet names
// are capped at the format's 31-character limit.
func writeXLSX(tables []table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		sheet := t.name
		if len(sheet) > 31 {
			sheet = sheet[:31]
		}
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
		}
		if err := setRow(f, sheet, 1, t.header); err != nil {
			return nil, err
		}
		for r, row := range t.rows {
			if err := setRow(f, sheet, r+2, row); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}

func fmtTime(t time.Time) string {
	return t.Format(store.TimeLayout)
}

func fmtPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
