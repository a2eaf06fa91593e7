package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"partsdesk/store"
)

// Backup copies the live database file into dir under a timestamped
// name and returns that name. No lock is taken: a backup during a
// concurrent write is best-effort, relying on SQLite's file format
// durability rather than a consistent snapshot.
func Backup(dbPath, dir string) (string, error) {
	src, err := os.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("open database file: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(dbPath)
	if ext == "" {
		ext = ".db"
	}
	name := fmt.Sprintf("backup_%s%s", time.Now().Format("20060102_150405"), ext)

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("copy database: %w", err)
	}
	return name, nil
}

// ListBackups returns backup filenames in dir, newest first.
func ListBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var backups []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "backup_") && strings.HasSuffix(name, ".db") {
			backups = append(backups, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// MaintenanceRunner gates database maintenance to at most one run per
// calendar day.
type MaintenanceRunner struct {
	mu      sync.Mutex
	db      *store.DB
	lastRun string // date of the last successful trigger, "2006-01-02"
}

func NewMaintenanceRunner(db *store.DB) *MaintenanceRunner {
	return &MaintenanceRunner{db: db}
}

// Run performs VACUUM/ANALYZE/integrity_check unless it already ran
// today. Returns (ran, clean, err).
func (m *MaintenanceRunner) Run() (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	if m.lastRun == today {
		return false, false, nil
	}
	clean, err := m.db.Maintenance()
	if err != nil {
		return false, false, err
	}
	m.lastRun = today
	return true, clean, nil
}
