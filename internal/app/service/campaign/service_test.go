package campaign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/usecmdr-rgb/ovrsee-sub007/internal/app/service/callwindow"
	models "github.com/usecmdr-rgb/ovrsee-sub007/internal/models"
)

func TestWindowConfig(t *testing.T) {
	c := &models.Campaign{
		ID:            "c1",
		Timezone:      "America/New_York",
		CallStartTime: "09:00:00",
		CallEndTime:   "18:00:00",
		CallDays:      datatypes.NewJSONSlice([]string{"mon", "tue"}),
	}

	cfg := WindowConfig(c)
	assert.Equal(t, "America/New_York", cfg.Timezone)
	assert.Equal(t, "09:00:00", cfg.StartTime)
	assert.Equal(t, "18:00:00", cfg.EndTime)
	assert.Equal(t, []string{"mon", "tue"}, cfg.Days)
}

func TestWindowConfig_RoundTripsThroughEvaluator(t *testing.T) {
	c := &models.Campaign{
		Timezone:      "America/New_York",
		CallStartTime: "09:00:00",
		CallEndTime:   "18:00:00",
		CallDays:      datatypes.NewJSONSlice([]string{"mon", "tue", "wed", "thu", "fri"}),
	}
	loc, _ := time.LoadLocation("America/New_York")

	e := callwindow.New()
	// Saturday 2026-01-10: denied, reason names Monday.
	d := e.Evaluate(WindowConfig(c), time.Date(2026, 1, 10, 12, 0, 0, 0, loc))
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reason, "Monday")
}
