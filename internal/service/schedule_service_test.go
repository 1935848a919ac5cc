package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-service/internal/eligibility"
	"delivery-service/internal/model"
)

func TestAvailabilityDefaultsFromBusinessClock(t *testing.T) {
	rules := newFakeRuleStore()
	rules.addWeekDay(model.WeekDayMonday, 20)
	rules.addWeekDay(model.WeekDayTuesday, 20)
	rules.addWeekDay(model.WeekDayWednesday, 20)
	engine := eligibility.New(rules, fixedServiceClock(), 12)
	svc := NewScheduleService(nil, newFakeDistrictStore(), engine, fixedServiceClock())

	// Zero from: the window starts on the clock's today, a Monday.
	dates, err := svc.Availability(context.Background(), plannerPrincipal(), nil, time.Time{}, 3)
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.True(t, dates[0].Date.Equal(testDay(2024, time.June, 10)))
	assert.True(t, dates[2].Date.Equal(testDay(2024, time.June, 12)))
}
