package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"partsdesk/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func strp(s string) *string { return &s }

// seed creates two clients, each with a vehicle and one part carrying a
// supplier quote.
func seed(t *testing.T, db *store.DB) {
	t.Helper()
	for _, c := range []struct{ phone, name, vin, part string }{
		{"5551111", "Alice", "ABC1234", "Radiator"},
		{"5552222", "Bob", "XYZ9876", "Mirror"},
	} {
		if err := db.CreateClient(c.phone, c.name, "tester"); err != nil {
			t.Fatalf("create client: %v", err)
		}
		if _, err := db.CreateVehicle(&store.Vehicle{VIN: strp(c.vin), ClientPhone: c.phone}, "tester"); err != nil {
			t.Fatalf("create vehicle: %v", err)
		}
		if _, err := db.CreatePart(&store.Part{VIN: strp(c.vin), ClientPhone: c.phone, PartName: c.part, Quantity: 1},
			[]store.Supplier{{SupplierName: "EuroParts", BuyingPrice: 10, SellingPrice: 15, DeliveryTime: "7"}},
			"tester"); err != nil {
			t.Fatalf("create part: %v", err)
		}
	}
}

func readZipCSV(t *testing.T, data []byte, name string) [][]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		return rows
	}
	t.Fatalf("%s not found in archive", name)
	return nil
}

func TestFilteredCSVAllTables(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	data, mime, err := Filtered(db, Options{}, FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if mime != MimeZip {
		t.Errorf("mime = %q, want %q", mime, MimeZip)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 4 {
		t.Errorf("archive entries = %d, want 4", len(zr.File))
	}

	clients := readZipCSV(t, data, "clients.csv")
	if len(clients) != 3 { // header + 2 rows
		t.Errorf("clients rows = %d, want 3", len(clients))
	}
	if clients[0][0] != "phone" {
		t.Errorf("header = %v", clients[0])
	}
}

func TestFilteredByClientPhone(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	data, _, err := Filtered(db, Options{ClientPhone: "5551111"}, FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	clients := readZipCSV(t, data, "clients.csv")
	if len(clients) != 2 || clients[1][0] != "5551111" {
		t.Errorf("clients = %v, want only 5551111", clients)
	}
	parts := readZipCSV(t, data, "parts.csv")
	if len(parts) != 2 || parts[1][3] != "Radiator" {
		t.Errorf("parts = %v, want only Radiator", parts)
	}
	// Supplier quotes follow the filtered parts transitively.
	suppliers := readZipCSV(t, data, "part_suppliers.csv")
	if len(suppliers) != 2 {
		t.Errorf("suppliers rows = %d, want 2", len(suppliers))
	}
	if suppliers[1][1] != parts[1][0] {
		t.Errorf("supplier part_id = %q, want %q", suppliers[1][1], parts[1][0])
	}
}

func TestFilteredIncludeList(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	data, _, err := Filtered(db, Options{Include: []string{"clients"}}, FormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "clients.csv" {
		t.Errorf("archive = %v, want clients.csv only", zr.File)
	}
}

func TestFilteredXLSX(t *testing.T) {
	db := testDB(t)
	seed(t, db)

	data, mime, err := Filtered(db, Options{}, FormatExcel)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if mime != MimeXLSX {
		t.Errorf("mime = %q, want %q", mime, MimeXLSX)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 4 {
		t.Fatalf("sheets = %v, want 4", sheets)
	}
	rows, err := f.GetRows("clients")
	if err != nil {
		t.Fatalf("read clients sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("clients sheet rows = %d, want 3", len(rows))
	}
}

func TestBackupAndList(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "live.db")
	liveDB, err := store.Open(src)
	if err != nil {
		t.Fatalf("open live db: %v", err)
	}
	defer liveDB.Close()

	backupDir := t.TempDir()
	name, err := Backup(src, backupDir)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if !strings.HasPrefix(name, "backup_") || !strings.HasSuffix(name, ".db") {
		t.Errorf("backup name = %q", name)
	}

	backups, err := ListBackups(backupDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(backups) != 1 || backups[0] != name {
		t.Errorf("backups = %v", backups)
	}

	// A copied backup reopens as a valid database.
	copied, err := store.Open(filepath.Join(backupDir, name))
	if err != nil {
		t.Fatalf("open backup: %v", err)
	}
	copied.Close()
}

func TestMaintenanceRunnerOncePerDay(t *testing.T) {
	db := testDB(t)
	m := NewMaintenanceRunner(db)

	ran, clean, err := m.Run()
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !ran || !clean {
		t.Errorf("first run = (ran=%t, clean=%t), want both true", ran, clean)
	}

	ran, _, err = m.Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if ran {
		t.Error("second run on the same day should be skipped")
	}

	// Forcing yesterday's stamp re-arms the gate.
	m.lastRun = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	ran, _, err = m.Run()
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if !ran {
		t.Error("stale stamp should allow another run")
	}
}
