package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusOnLeave Status = "on_leave"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusOnLeave:
		return true
	}
	return false
}

// Stage is the lifecycle position of a record for the day.
type Stage string

const (
	StageNone       Stage = "none" // placeholder without a clock-in (absent, on leave)
	StageClockedIn  Stage = "clocked_in"
	StageOnBreak    Stage = "on_break"
	StageBreakTaken Stage = "break_taken"
	StageClockedOut Stage = "clocked_out"
)

// CheckClockIn returns the rejection that applies to a clock-in at this stage.
func (s Stage) CheckClockIn() error {
	if s != StageNone {
		return ErrAlreadyClockedIn
	}
	return nil
}

func (s Stage) CheckStartBreak() error {
	switch s {
	case StageNone:
		return ErrNotClockedIn
	case StageClockedOut:
		return ErrAlreadyClockedOut
	case StageOnBreak:
		return ErrBreakAlreadyStarted
	case StageBreakTaken:
		return ErrBreakAlreadyEnded
	}
	return nil
}

func (s Stage) CheckEndBreak() error {
	switch s {
	case StageNone:
		return ErrNotClockedIn
	case StageClockedOut:
		return ErrAlreadyClockedOut
	case StageBreakTaken:
		return ErrBreakAlreadyEnded
	case StageClockedIn:
		return ErrBreakNotStarted
	}
	return nil
}

func (s Stage) CheckClockOut() error {
	switch s {
	case StageNone:
		return ErrNotClockedIn
	case StageClockedOut:
		return ErrAlreadyClockedOut
	}
	return nil
}

type Visibility string

const (
	VisibilityEnabled  Visibility = "enabled"
	VisibilityDisabled Visibility = "disabled"
)

func (v Visibility) Valid() bool {
	return v == VisibilityEnabled || v == VisibilityDisabled
}

// Accounting holds every figure derived from a record's timestamps. It is
// recomputed as a whole on each transition and never patched field by field.
type Accounting struct {
	LateMinutes              int
	BreakMinutes             int
	BreakOverageMinutes      int
	WorkedMinutes            int
	ActualOvertimeMinutes    int // shown for reference, never accrued
	OvertimeMinutes          int // capped by the approved request and the daily max
	NightDifferentialMinutes int
	EarlyOutMinutes          int
}

// Accrual is what a record has credited to its owner's running totals.
type Accrual struct {
	OvertimeMinutes          int
	NightDifferentialMinutes int
}

// Record is one user's attendance for one calendar date.
type Record struct {
	ID     string
	UserID string
	Date   time.Time // calendar date at UTC midnight

	ClockIn     *time.Time
	ClockOut    *time.Time
	BreakStart  *time.Time
	BreakFinish *time.Time

	Status       Status
	Stage        Stage
	Accounting   Accounting
	Accrued      Accrual // high-water mark of the snapshot, never lowered
	Visibility   Visibility
	LastEditedBy *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	UserName *string
}

// RaiseAccrued lifts Accrued to the current snapshot and returns the increase.
// Minutes an edit removes and a later edit restores are not credited twice.
func (r *Record) RaiseAccrued() Accrual {
	gained := Accrual{
		OvertimeMinutes:          max(0, r.Accounting.OvertimeMinutes-r.Accrued.OvertimeMinutes),
		NightDifferentialMinutes: max(0, r.Accounting.NightDifferentialMinutes-r.Accrued.NightDifferentialMinutes),
	}
	r.Accrued.OvertimeMinutes += gained.OvertimeMinutes
	r.Accrued.NightDifferentialMinutes += gained.NightDifferentialMinutes
	return gained
}

// DeriveStage reads the lifecycle stage off the timestamps. Used after an
// administrator rewrites them.
func (r Record) DeriveStage() Stage {
	switch {
	case r.ClockIn == nil:
		return StageNone
	case r.ClockOut != nil:
		return StageClockedOut
	case r.BreakFinish != nil:
		return StageBreakTaken
	case r.BreakStart != nil:
		return StageOnBreak
	}
	return StageClockedIn
}

// DateOf returns the calendar date of t as observed in loc, at UTC midnight.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CheckTimeline validates the ordering of the timestamps against the record's
// calendar date observed in loc.
func (r Record) CheckTimeline(loc *time.Location) error {
	if r.ClockIn == nil {
		if r.ClockOut != nil {
			return ErrClockOutWithoutClockIn
		}
		if r.BreakStart != nil || r.BreakFinish != nil {
			return ErrBreakWithoutClockIn
		}
		return nil
	}

	if !DateOf(*r.ClockIn, loc).Equal(r.Date) {
		return ErrClockInOnAnotherDate
	}
	if r.ClockOut != nil && !r.ClockOut.After(*r.ClockIn) {
		return ErrClockOutBeforeClockIn
	}

	if r.BreakFinish != nil && r.BreakStart == nil {
		return ErrBreakFinishWithoutStart
	}
	if r.BreakStart == nil {
		return nil
	}
	if r.BreakStart.Before(*r.ClockIn) {
		return ErrBreakOutsideShift
	}
	if r.BreakFinish != nil && !r.BreakFinish.After(*r.BreakStart) {
		return ErrBreakFinishBeforeStart
	}
	if r.ClockOut != nil {
		if r.BreakFinish == nil {
			return ErrBreakNotClosed
		}
		if r.BreakFinish.After(*r.ClockOut) {
			return ErrBreakOutsideShift
		}
	}
	return nil
}
