// Package inventory is the audited mutation layer. Every mutation
// validates its inputs, sanitizes strings, performs the write (one
// transaction when it spans tables), and appends exactly one activity
// entry with before/after snapshots.
package inventory

import (
	"fmt"

	"go.uber.org/zap"

	"partsdesk/store"
)

// ValidationError marks input and integrity failures the caller should
// surface to the user rather than treat as server faults.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

func invalidf(format string, args ...any) error {
	return ValidationError(fmt.Sprintf(format, args...))
}

// SupplierInput is one supplier quote submitted with a part.
type SupplierInput struct {
	Name         string  `json:"name"`
	BuyingPrice  float64 `json:"buying_price"`
	SellingPrice float64 `json:"selling_price"`
	DeliveryTime string  `json:"delivery_time"`
}

// Service exposes the validated, audited operations over the store.
type Service struct {
	db  *store.DB
	log *zap.SugaredLogger
}

func New(db *store.DB, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{db: db, log: log}
}

// DB exposes the underlying store for read-only consumers (export,
// document generation).
func (s *Service) DB() *store.DB { return s.db }

// logActivity appends the audit entry for a mutation. Audit failures
// are logged, not propagated: the mutation itself already committed.
func (s *Service) logActivity(username, action, details string, tableName, recordID string, oldValues, newValues any) {
	var tn, rid *string
	if tableName != "" {
		tn = &tableName
	}
	if recordID != "" {
		rid = &recordID
	}
	if err := s.db.LogActivity(username, action, details, tn, rid, oldValues, newValues); err != nil {
		s.log.Errorw("activity log append failed", "action", action, "err", err)
	}
}

// SearchResults groups substring matches across the three entity tables.
type SearchResults struct {
	Clients  []store.Client  `json:"clients"`
	Vehicles []store.Vehicle `json:"vehicles"`
	Parts    []store.Part    `json:"parts"`
}

// Search runs a substring match across clients, vehicles and parts.
// Read failures degrade to empty results since this backs display only.
func (s *Service) Search(q string) SearchResults {
	var res SearchResults
	if q == "" {
		return res
	}
	var err error
	if res.Clients, err = s.db.SearchClients(q); err != nil {
		s.log.Warnw("client search failed", "err", err)
	}
	if res.Vehicles, err = s.db.SearchVehicles(q); err != nil {
		s.log.Warnw("vehicle search failed", "err", err)
	}
	if res.Parts, err = s.db.SearchParts(q); err != nil {
		s.log.Warnw("part search failed", "err", err)
	}
	return res
}

// ActivityLogs returns recent audit entries, newest first.
func (s *Service) ActivityLogs(username string, limit int) []store.ActivityEntry {
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.db.GetActivityLogs(username, limit)
	if err != nil {
		s.log.Warnw("activity log read failed", "err", err)
		return nil
	}
	return entries
}
