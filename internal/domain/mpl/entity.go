package mpl

import (
	"time"

	"github.com/shopspring/decimal"
)

// HoursPerUnit is the overtime converted into one leave credit.
const HoursPerUnit = 8

// Cutoff is a 16th-to-15th aggregation window; both ends are inclusive
// calendar dates at UTC midnight.
type Cutoff struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether date falls inside the window.
func (c Cutoff) Contains(date time.Time) bool {
	return !date.Before(c.Start) && !date.After(c.End)
}

// Quota is the convertible balance of one user in one cutoff.
type Quota struct {
	Cutoff             Cutoff
	TotalOvertimeHours decimal.Decimal
	MaxConvertible     int
	AlreadyConverted   int
	Remaining          int
}

// Conversion is an append-only ledger entry.
type Conversion struct {
	ID                    string
	UserID                string
	CutoffStart           time.Time
	CutoffEnd             time.Time
	TotalOvertimeHours    decimal.Decimal
	MplConverted          int
	ResidualOvertimeHours decimal.Decimal
	ConvertedBy           string
	ConvertedAt           time.Time
}
