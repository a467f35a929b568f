package user

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin    Role = "admin"    // Reviews requests, edits records, converts MPL
	RoleEmployee Role = "employee" // Clocks in/out, files overtime requests
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

type User struct {
	ID        string
	FullName  string
	Email     string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin checks if the actor may run administrator operations
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Accumulators are the running totals kept on the user row.
// They only grow: payout and leave consumption live elsewhere.
type Accumulators struct {
	UserID                   string
	OvertimeMinutes          int
	NightDifferentialMinutes int
	MplCredits               decimal.Decimal
	UpdatedAt                time.Time
}
