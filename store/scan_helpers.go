package store

import (
	"database/sql"
	"time"
)

// TimeLayout is the timestamp format stored in every TEXT datetime column.
const TimeLayout = "2006-01-02 15:04:05"

func scanTime(s string) time.Time {
	t, _ := time.Parse(TimeLayout, s)
	return t
}

func scanTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(TimeLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func scanStrPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// now returns the current localtime in TimeLayout, matching what the
// schema defaults produce.
func now() string {
	return time.Now().Format(TimeLayout)
}
