package timetable

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tidbyt.dev/timetable/model"
)

// ParseDayType validates a day-type label at the query boundary.
func ParseDayType(label string) (model.DayType, error) {
	switch strings.ToLower(label) {
	case "weekday":
		return model.DayTypeWeekday, nil
	case "saturday":
		return model.DayTypeSaturday, nil
	case "sunday":
		return model.DayTypeSunday, nil
	}
	return 0, &InvalidQueryError{Detail: fmt.Sprintf("unknown day type '%s'", label)}
}

// ActiveServices returns the ids of all services that could run on the
// given day type, sorted.
//
// A day type is a recurring weekly pattern, not a calendar date, so
// this intentionally considers only the weekday flags of each calendar
// entry: calendar_dates exceptions and calendar date ranges are bound
// to specific dates and do not apply. The resulting reports describe
// typical service, not any one date.
func (t *Timetable) ActiveServices(day model.DayType) []string {
	mask := day.WeekdayMask()

	services := []string{}
	for serviceID, cal := range t.calendars {
		if cal.Weekday&mask != 0 {
			services = append(services, serviceID)
		}
	}

	sort.Strings(services)
	return services
}

// ActiveServicesOn returns the ids of all services active on a specific
// YYYYMMDD date, sorted.
//
// Resolution is two phase: first the calendar defaults (date range plus
// weekday flag), then the calendar_dates overrides for the date.
// Exceptions always take precedence over the defaults. A service id
// defined in neither table is inactive.
func (t *Timetable) ActiveServicesOn(date string) ([]string, error) {
	parsedDate, err := time.ParseInLocation("20060102", date, time.UTC)
	if err != nil {
		return nil, &InvalidQueryError{Detail: fmt.Sprintf("malformed date '%s'", date)}
	}

	active := map[string]bool{}

	for serviceID, cal := range t.calendars {
		if cal.Weekday&(1<<parsedDate.Weekday()) == 0 {
			continue
		}
		if cal.StartDate > date {
			continue
		}
		if cal.EndDate < date {
			continue
		}
		active[serviceID] = true
	}

	for serviceID, cds := range t.exceptions {
		for _, cd := range cds {
			if cd.Date != date {
				continue
			}
			switch cd.ExceptionType {
			case model.ExceptionAdded:
				active[serviceID] = true
			case model.ExceptionRemoved:
				active[serviceID] = false
			}
		}
	}

	services := []string{}
	for serviceID, isActive := range active {
		if isActive {
			services = append(services, serviceID)
		}
	}

	sort.Strings(services)
	return services, nil
}
