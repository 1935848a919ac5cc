package eligibility

import (
	"context"
	"time"

	"delivery-service/internal/model"
)

// DefaultForecastHorizonDays bounds how far ahead NextAvailableDate looks.
const DefaultForecastHorizonDays = 30

// AvailableDates walks the date range and collects days that pass
// CheckDayEligibility, up to max entries.
func (e *Engine) AvailableDates(ctx context.Context, start, end time.Time, district *model.District, max int) ([]model.DateAvailability, error) {
	if max <= 0 {
		max = DefaultForecastHorizonDays
	}
	var available []model.DateAvailability
	for d := DateOnly(start); !d.After(end) && len(available) < max; d = d.AddDate(0, 0, 1) {
		result, err := e.CheckDayEligibility(ctx, d, district)
		if err != nil {
			return nil, err
		}
		if !result.Available {
			continue
		}
		available = append(available, model.DateAvailability{
			Date:              d,
			DayName:           result.DayName,
			RemainingCapacity: result.RemainingCapacity,
			DistrictCapacity:  result.DistrictCapacity,
		})
	}
	return available, nil
}

// NextAvailableDate returns the first eligible date within the forecast
// horizon, or nil when the horizon is fully booked or closed.
func (e *Engine) NextAvailableDate(ctx context.Context, district *model.District, from time.Time) (*model.DateAvailability, error) {
	start := DateOnly(from)
	end := start.AddDate(0, 0, DefaultForecastHorizonDays)
	dates, err := e.AvailableDates(ctx, start, end, district, 1)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}
	return &dates[0], nil
}
