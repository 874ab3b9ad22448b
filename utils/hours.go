package utils

import (
	"encoding/json"

	"bookline-backend/models"
)

// HoursInterval is a same-day local-time range in "HH:MM" form.
// Intervals may not span midnight.
type HoursInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DayHours struct {
	IsOpen    bool            `json:"isOpen"`
	Intervals []HoursInterval `json:"intervals"`
}

// DayHoursFromConfig decodes the business-hours entry for a weekday key
// ("monday".."sunday") out of the tenant's JSONB configuration. The
// second return value is false when the day has no configuration.
func DayHoursFromConfig(cfg models.JSONB, weekday string) (DayHours, bool) {
	var day DayHours
	raw, ok := cfg[weekday]
	if !ok || raw == nil {
		return day, false
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return day, false
	}
	if err := json.Unmarshal(b, &day); err != nil {
		return day, false
	}
	return day, true
}

// DefaultBusinessHours mirrors the registration default: open weekdays
// and Saturday, closed Sunday.
func DefaultBusinessHours() models.JSONB {
	open := func(start, end string) map[string]interface{} {
		return map[string]interface{}{
			"isOpen":    true,
			"intervals": []map[string]interface{}{{"start": start, "end": end}},
		}
	}
	return models.JSONB{
		"monday":    open("09:00", "18:00"),
		"tuesday":   open("09:00", "18:00"),
		"wednesday": open("09:00", "18:00"),
		"thursday":  open("09:00", "18:00"),
		"friday":    open("09:00", "18:00"),
		"saturday":  open("10:00", "16:00"),
		"sunday":    map[string]interface{}{"isOpen": false, "intervals": []map[string]interface{}{}},
	}
}
