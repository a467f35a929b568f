package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_RaiseAccrued(t *testing.T) {
	rec := Record{Accounting: Accounting{OvertimeMinutes: 120, NightDifferentialMinutes: 30}}

	gained := rec.RaiseAccrued()
	assert.Equal(t, Accrual{OvertimeMinutes: 120, NightDifferentialMinutes: 30}, gained)

	// a shorter snapshot leaves the mark where it is
	rec.Accounting = Accounting{OvertimeMinutes: 60}
	assert.Equal(t, Accrual{}, rec.RaiseAccrued())
	assert.Equal(t, Accrual{OvertimeMinutes: 120, NightDifferentialMinutes: 30}, rec.Accrued)

	// restoring it credits nothing, going past it credits only the excess
	rec.Accounting = Accounting{OvertimeMinutes: 120, NightDifferentialMinutes: 30}
	assert.Equal(t, Accrual{}, rec.RaiseAccrued())

	rec.Accounting = Accounting{OvertimeMinutes: 150, NightDifferentialMinutes: 30}
	assert.Equal(t, Accrual{OvertimeMinutes: 30}, rec.RaiseAccrued())
	assert.Equal(t, 150, rec.Accrued.OvertimeMinutes)
}
