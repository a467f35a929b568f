package accounting

import (
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
)

// Input is everything a record's figures depend on.
type Input struct {
	Date        time.Time // calendar date at UTC midnight
	ClockIn     *time.Time
	ClockOut    *time.Time
	BreakStart  *time.Time
	BreakFinish *time.Time

	Config   overtime.Config
	Approved *overtime.Request // the day's approved request, if any
	Location *time.Location    // where the office schedule is observed
}

// InputFor collects the timestamps of record.
func InputFor(record attendance.Record, cfg overtime.Config, approved *overtime.Request, loc *time.Location) Input {
	return Input{
		Date:        record.Date,
		ClockIn:     record.ClockIn,
		ClockOut:    record.ClockOut,
		BreakStart:  record.BreakStart,
		BreakFinish: record.BreakFinish,
		Config:      cfg,
		Approved:    approved,
		Location:    loc,
	}
}

// BreakDuration is the closed break clipped to the shift. An open break
// counts as zero.
func BreakDuration(in Input) time.Duration {
	if in.ClockIn == nil || in.BreakStart == nil || in.BreakFinish == nil {
		return 0
	}
	shiftEnd := *in.BreakFinish
	if in.ClockOut != nil {
		shiftEnd = *in.ClockOut
	}
	return Overlap(*in.BreakStart, *in.BreakFinish, *in.ClockIn, shiftEnd)
}

// Compute derives the full accounting snapshot. Clock-out dependent figures
// stay zero until the record has a clock-out.
func Compute(in Input) attendance.Accounting {
	var acc attendance.Accounting
	if in.ClockIn == nil {
		return acc
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	cfg := in.Config
	officeStart, officeEnd := DayWindow(in.Date, cfg.OfficeStart, cfg.OfficeEnd, loc)

	acc.LateMinutes = Minutes(in.ClockIn.Sub(officeStart))

	breakDuration := BreakDuration(in)
	acc.BreakMinutes = Minutes(breakDuration)
	acc.BreakOverageMinutes = Minutes(breakDuration - cfg.BreakMax())

	if in.ClockOut == nil {
		return acc
	}

	worked := in.ClockOut.Sub(*in.ClockIn) - breakDuration
	acc.WorkedMinutes = Minutes(worked)

	actual, capped := CapOvertime(worked, cfg, in.Approved)
	acc.ActualOvertimeMinutes = Minutes(actual)
	acc.OvertimeMinutes = Minutes(capped)

	// measured over the approved window itself, not the hours on the clock
	if in.Approved != nil && in.Approved.Status == overtime.RequestStatusApproved {
		windowStart, windowEnd := ApprovedWindow(*in.Approved, loc)
		acc.NightDifferentialMinutes = Minutes(NightDifferential(windowStart, windowEnd, cfg, loc))
	}

	acc.EarlyOutMinutes = Minutes(Overlap(*in.ClockOut, officeEnd, officeStart, officeEnd))

	return acc
}

// StatusFor returns Late when the clock-in falls after office start, even by
// less than a whole minute, else Present.
func StatusFor(in Input) attendance.Status {
	if in.ClockIn == nil {
		return attendance.StatusPresent
	}
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	officeStart := in.Config.OfficeStart.On(in.Date, loc)
	if in.ClockIn.After(officeStart) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}
