// services/availability.go
package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/utils"
)

const DefaultSlotStepMinutes = 15

type AvailabilityService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAvailabilityService(db *gorm.DB, log *zap.Logger) *AvailabilityService {
	return &AvailabilityService{db: db, log: log}
}

// AvailabilityResult lists bookable start times as local "HH:MM"
// strings, sorted ascending.
type AvailabilityResult struct {
	AvailableSlots  []string `json:"available_slots"`
	DateChecked     string   `json:"date_checked"`
	TimezoneQueried string   `json:"timezone_queried"`
}

type timeRange struct {
	start time.Time
	end   time.Time
}

// TenantLocation resolves the tenant's timezone, falling back to UTC
// with a warning rather than failing the request.
func (s *AvailabilityService) TenantLocation(tenant *models.Tenant) *time.Location {
	tz := tenant.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("tenant timezone not found, defaulting to UTC",
			zap.String("timezone", tz), zap.String("tenant", tenant.Subdomain))
		return time.UTC
	}
	return loc
}

// SlotsForDate computes the bookable start times on a calendar date for
// the combined duration of the requested services. An empty slot list is
// a valid outcome; only malformed input is an error.
func (s *AvailabilityService) SlotsForDate(tenant *models.Tenant, date time.Time, serviceIDs []uuid.UUID) (*AvailabilityResult, error) {
	if len(serviceIDs) == 0 {
		return nil, fmt.Errorf("%w: no service IDs provided", utils.ErrInvalidInput)
	}

	totalDuration, err := s.totalDuration(tenant.ID, serviceIDs)
	if err != nil {
		return nil, err
	}

	loc := s.TenantLocation(tenant)
	result := &AvailabilityResult{
		AvailableSlots:  []string{},
		DateChecked:     date.Format("2006-01-02"),
		TimezoneQueried: loc.String(),
	}

	weekday := strings.ToLower(date.Weekday().String())
	day, ok := utils.DayHoursFromConfig(tenant.BusinessHours, weekday)
	if !ok || !day.IsOpen || len(day.Intervals) == 0 {
		return result, nil
	}

	workIntervals := s.workIntervalsUTC(tenant, date, loc, day.Intervals)
	if len(workIntervals) == 0 {
		return result, nil
	}

	busy, err := s.busyIntervalsUTC(tenant.ID, date, loc)
	if err != nil {
		return nil, err
	}

	step := time.Duration(tenant.SlotStepMinutes) * time.Minute
	if step <= 0 {
		step = DefaultSlotStepMinutes * time.Minute
	}

	seen := make(map[string]struct{})
	for _, work := range workIntervals {
		for candidate := work.start; ; candidate = candidate.Add(step) {
			candidateEnd := candidate.Add(totalDuration)
			if candidateEnd.After(work.end) {
				break
			}
			if !overlapsAny(candidate, candidateEnd, busy) {
				slot := candidate.In(loc).Format("15:04")
				if _, dup := seen[slot]; !dup {
					seen[slot] = struct{}{}
					result.AvailableSlots = append(result.AvailableSlots, slot)
				}
			}
			if !candidate.Add(step).Before(work.end) {
				break
			}
		}
	}

	sort.Strings(result.AvailableSlots)
	return result, nil
}

// totalDuration sums the durations of the requested services, verifying
// every ID belongs to the tenant.
func (s *AvailabilityService) totalDuration(tenantID uuid.UUID, serviceIDs []uuid.UUID) (time.Duration, error) {
	var services []models.Service
	if err := s.db.Where("id IN ? AND tenant_id = ?", serviceIDs, tenantID).Find(&services).Error; err != nil {
		return 0, err
	}

	found := make(map[uuid.UUID]struct{}, len(services))
	total := 0
	for _, svc := range services {
		found[svc.ID] = struct{}{}
		total += svc.DurationMinutes
	}
	for _, id := range serviceIDs {
		if _, ok := found[id]; !ok {
			return 0, fmt.Errorf("%w: service %s does not belong to this tenant", utils.ErrServiceNotFound, id)
		}
	}
	if total <= 0 {
		return 0, utils.ErrInvalidDuration
	}
	return time.Duration(total) * time.Minute, nil
}

// workIntervalsUTC converts the day's configured local intervals to
// absolute UTC ranges. Intervals with end <= start (no midnight
// spanning) are skipped, as are ranges that collapse after timezone
// conversion around DST transitions.
func (s *AvailabilityService) workIntervalsUTC(tenant *models.Tenant, date time.Time, loc *time.Location, intervals []utils.HoursInterval) []timeRange {
	var out []timeRange
	for _, iv := range intervals {
		startClock, err1 := time.Parse("15:04", iv.Start)
		endClock, err2 := time.Parse("15:04", iv.End)
		if err1 != nil || err2 != nil {
			s.log.Error("malformed business-hours interval",
				zap.String("tenant", tenant.Subdomain),
				zap.String("start", iv.Start), zap.String("end", iv.End))
			continue
		}
		if !endClock.After(startClock) {
			s.log.Warn("skipping business-hours interval that does not end after it starts",
				zap.String("tenant", tenant.Subdomain),
				zap.String("start", iv.Start), zap.String("end", iv.End))
			continue
		}

		startLocal := time.Date(date.Year(), date.Month(), date.Day(),
			startClock.Hour(), startClock.Minute(), 0, 0, loc)
		endLocal := time.Date(date.Year(), date.Month(), date.Day(),
			endClock.Hour(), endClock.Minute(), 0, 0, loc)

		startUTC := startLocal.UTC()
		endUTC := endLocal.UTC()
		if !endUTC.After(startUTC) {
			s.log.Warn("skipping business-hours interval collapsed by timezone conversion",
				zap.String("tenant", tenant.Subdomain),
				zap.Time("start_utc", startUTC), zap.Time("end_utc", endUTC))
			continue
		}
		out = append(out, timeRange{start: startUTC, end: endUTC})
	}
	return out
}

// busyIntervalsUTC loads the PENDING/CONFIRMED appointments whose start
// falls inside the local midnight-to-midnight range of the date.
// Cancelled and done appointments do not block a slot.
func (s *AvailabilityService) busyIntervalsUTC(tenantID uuid.UUID, date time.Time, loc *time.Location) ([]timeRange, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc).UTC()
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).UTC()

	var appointments []models.Appointment
	err := s.db.
		Where("tenant_id = ? AND status IN ? AND appointment_time >= ? AND appointment_time < ?",
			tenantID,
			[]models.AppointmentStatus{models.AppointmentPending, models.AppointmentConfirmed},
			dayStart, dayEnd).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}

	busy := make([]timeRange, 0, len(appointments))
	for _, appt := range appointments {
		busy = append(busy, timeRange{
			start: appt.AppointmentTime.UTC(),
			end:   appt.EndTime.UTC(),
		})
	}
	return busy, nil
}

// overlapsAny uses max(start1, start2) < min(end1, end2) on half-open
// intervals.
func overlapsAny(start, end time.Time, busy []timeRange) bool {
	for _, b := range busy {
		latestStart := start
		if b.start.After(latestStart) {
			latestStart = b.start
		}
		earliestEnd := end
		if b.end.Before(earliestEnd) {
			earliestEnd = b.end
		}
		if latestStart.Before(earliestEnd) {
			return true
		}
	}
	return false
}
