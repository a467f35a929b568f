package accounting

import (
	"time"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/overtime"
)

// RegularDuration is the office span minus the allowed break, never negative.
func RegularDuration(cfg overtime.Config) time.Duration {
	span := cfg.OfficeEnd.Duration() - cfg.OfficeStart.Duration()
	if span <= 0 {
		span += 24 * time.Hour
	}
	regular := span - cfg.BreakMax()
	if regular < 0 {
		return 0
	}
	return regular
}

// CapOvertime splits worked time beyond the regular span into what was
// actually worked and what may accrue. Nothing accrues without an approved
// request; with one, accrual is bounded by its window and by the daily max.
func CapOvertime(worked time.Duration, cfg overtime.Config, approved *overtime.Request) (actual, capped time.Duration) {
	actual = worked - RegularDuration(cfg)
	if actual < 0 {
		actual = 0
	}
	if approved == nil || approved.Status != overtime.RequestStatusApproved {
		return actual, 0
	}

	capped = actual
	if window := approved.WindowDuration(); window < capped {
		capped = window
	}
	if dailyMax := cfg.DailyMax(); dailyMax < capped {
		capped = dailyMax
	}
	return actual, capped
}

// ApprovedWindow anchors an approved request to its date.
func ApprovedWindow(req overtime.Request, loc *time.Location) (start, end time.Time) {
	if req.EndTime <= req.StartTime {
		start = req.StartTime.On(req.Date, loc)
		return start, start
	}
	return DayWindow(req.Date, req.StartTime, req.EndTime, loc)
}

// NightDifferential is the part of [start, end] inside the configured night
// window.
func NightDifferential(start, end time.Time, cfg overtime.Config, loc *time.Location) time.Duration {
	return NightOverlap(start, end, cfg.NightDifferentialStart, cfg.NightDifferentialEnd, loc)
}
