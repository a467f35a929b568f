package accounting

import (
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/mpl"
	"github.com/shopspring/decimal"
)

var (
	minutesPerHour = decimal.NewFromInt(60)
	hoursPerUnit   = decimal.NewFromInt(mpl.HoursPerUnit)
)

// CutoffFor returns the 16th-to-15th window containing the calendar date of
// ref. time.Date normalizes month 0 and 13, which covers the year boundary.
func CutoffFor(ref time.Time) mpl.Cutoff {
	y, m, d := ref.Date()
	if d <= 15 {
		return mpl.Cutoff{
			Start: time.Date(y, m-1, 16, 0, 0, 0, 0, time.UTC),
			End:   time.Date(y, m, 15, 0, 0, 0, 0, time.UTC),
		}
	}
	return mpl.Cutoff{
		Start: time.Date(y, m, 16, 0, 0, 0, 0, time.UTC),
		End:   time.Date(y, m+1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// OvertimeHours converts accrued minutes to hours.
func OvertimeHours(minutes int64) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(minutes).Div(minutesPerHour)
}

// QuotaFor computes the convertible balance of a cutoff from the overtime
// minutes accrued in it and the units converted so far.
func QuotaFor(cutoff mpl.Cutoff, totalOvertimeMinutes int64, alreadyConverted int) mpl.Quota {
	hours := OvertimeHours(totalOvertimeMinutes)
	maxConvertible := int(hours.Div(hoursPerUnit).Floor().IntPart())

	remaining := maxConvertible - alreadyConverted
	if remaining < 0 {
		// accrued minutes were edited down after a conversion
		remaining = 0
	}

	return mpl.Quota{
		Cutoff:             cutoff,
		TotalOvertimeHours: hours,
		MaxConvertible:     maxConvertible,
		AlreadyConverted:   alreadyConverted,
		Remaining:          remaining,
	}
}

// ResidualHours is what stays unconverted after requested more units.
func ResidualHours(q mpl.Quota, requested int) decimal.Decimal {
	converted := decimal.NewFromInt(int64(q.AlreadyConverted + requested)).Mul(hoursPerUnit)
	return q.TotalOvertimeHours.Sub(converted).Floor()
}
