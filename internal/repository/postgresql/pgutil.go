package postgresql

import (
	"errors"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/timeofday"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique violation on constraint.
// An empty constraint matches any.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isUUID guards lookups by id; a malformed id cannot match any row and would
// otherwise fail the query with an input syntax error.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func timeToPg(t timeofday.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * 1_000_000, Valid: true}
}

func timeFromPg(t pgtype.Time) timeofday.TimeOfDay {
	return timeofday.TimeOfDay(t.Microseconds / 1_000_000)
}

func sortDirection(order string) string {
	if order == "asc" || order == "ASC" {
		return "ASC"
	}
	return "DESC"
}
