package attendance

import (
	"testing"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recordID = "9a1b2c3d-4e5f-4a6b-8c7d-8e9f0a1b2c3d"

func strPtr(s string) *string { return &s }

func TestAdminEditRequest_Validate(t *testing.T) {
	absent := strPtr(string(StatusAbsent))

	tests := []struct {
		name      string
		req       AdminEditRequest
		wantField string // empty when valid
	}{
		{"timestamps only", AdminEditRequest{ID: recordID, ClockOut: strPtr("2025-03-10T19:00:00+07:00")}, ""},
		{"status only", AdminEditRequest{ID: recordID, Status: absent}, ""},
		{"status with clock out", AdminEditRequest{ID: recordID, Status: absent, ClockOut: strPtr("2025-03-10T19:00:00+07:00")}, "status"},
		{"status with clear break", AdminEditRequest{ID: recordID, Status: absent, ClearBreak: true}, "status"},
		{"present is not an override", AdminEditRequest{ID: recordID, Status: strPtr(string(StatusPresent))}, "status"},
		{"clear with clock out", AdminEditRequest{ID: recordID, ClearClockOut: true, ClockOut: strPtr("2025-03-10T19:00:00+07:00")}, "clear_clock_out"},
		{"nothing to change", AdminEditRequest{ID: recordID}, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs.ToMap(), tt.wantField)
		})
	}
}
