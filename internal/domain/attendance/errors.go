package attendance

import "github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"

// Lifecycle errors
var (
	ErrNotClockedIn        = apperror.NewPrecondition("ATTENDANCE_NOT_CLOCKED_IN", "you have not clocked in today")
	ErrAlreadyClockedIn    = apperror.NewPrecondition("ATTENDANCE_ALREADY_CLOCKED_IN", "you have already clocked in today")
	ErrAlreadyClockedOut   = apperror.NewPrecondition("ATTENDANCE_ALREADY_CLOCKED_OUT", "you have already clocked out today")
	ErrBreakAlreadyStarted = apperror.NewPrecondition("ATTENDANCE_BREAK_ALREADY_STARTED", "your break has already started")
	ErrBreakNotStarted     = apperror.NewPrecondition("ATTENDANCE_BREAK_NOT_STARTED", "you have not started a break")
	ErrBreakAlreadyEnded   = apperror.NewPrecondition("ATTENDANCE_BREAK_ALREADY_ENDED", "your break has already ended")
)

// Administration errors
var (
	ErrRecordNotFound          = apperror.NewNotFound("ATTENDANCE_NOT_FOUND", "attendance record not found")
	ErrClockOutBeforeClockIn   = apperror.NewPolicy("ATTENDANCE_CLOCK_OUT_BEFORE_CLOCK_IN", "clock-out must be after clock-in")
	ErrBreakFinishBeforeStart  = apperror.NewPolicy("ATTENDANCE_BREAK_FINISH_BEFORE_START", "break finish must be after break start")
	ErrBreakWithoutClockIn     = apperror.NewPolicy("ATTENDANCE_BREAK_WITHOUT_CLOCK_IN", "a break needs a clock-in")
	ErrBreakOutsideShift       = apperror.NewPolicy("ATTENDANCE_BREAK_OUTSIDE_SHIFT", "break must fall between clock-in and clock-out")
	ErrBreakFinishWithoutStart = apperror.NewPolicy("ATTENDANCE_BREAK_FINISH_WITHOUT_START", "break finish needs a break start")
	ErrClockOutWithoutClockIn  = apperror.NewPolicy("ATTENDANCE_CLOCK_OUT_WITHOUT_CLOCK_IN", "clock-out needs a clock-in")
	ErrClockInOnAnotherDate    = apperror.NewPolicy("ATTENDANCE_CLOCK_IN_ON_ANOTHER_DATE", "clock-in must fall on the record's date")
	ErrBreakNotClosed          = apperror.NewPolicy("ATTENDANCE_BREAK_NOT_CLOSED", "a clocked-out record needs a break finish")
)
