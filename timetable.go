// Package timetable derives human readable timetables from a static
// GTFS dataset: the first scheduled departure per route and direction
// for each day type, and the full stop-by-stop detail of every trip on
// a single route.
package timetable

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"tidbyt.dev/timetable/model"
	"tidbyt.dev/timetable/storage"
)

// Timetable holds a fully loaded and validated GTFS dataset. All query
// methods are pure functions over the loaded tables; read-only access
// is always safe.
type Timetable struct {
	routes     map[string]*model.Route
	routeOrder []string
	stops      map[string]*model.Stop
	trips      map[string]*model.Trip
	tripOrder  []string
	stopTimes  map[string][]*model.StopTime
	calendars  map[string]*model.Calendar
	exceptions map[string][]*model.CalendarDate

	warnings []string
	logger   *zap.Logger
}

type Option func(*Timetable)

func WithLogger(logger *zap.Logger) Option {
	return func(t *Timetable) {
		t.logger = logger
	}
}

// New reads all tables from reader and builds the in-memory schedule
// model. Loading is all or nothing: a duplicate identifier, a dangling
// reference, or out of order stop times fail with DataIntegrityError
// and no model is returned.
func New(reader storage.DatasetReader, opts ...Option) (*Timetable, error) {
	t := &Timetable{
		routes:     map[string]*model.Route{},
		stops:      map[string]*model.Stop{},
		trips:      map[string]*model.Trip{},
		stopTimes:  map[string][]*model.StopTime{},
		calendars:  map[string]*model.Calendar{},
		exceptions: map[string][]*model.CalendarDate{},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	routes, err := reader.Routes()
	if err != nil {
		return nil, fmt.Errorf("reading routes: %w", err)
	}
	for _, route := range routes {
		if _, found := t.routes[route.ID]; found {
			return nil, integrityErrorf("duplicate route_id '%s'", route.ID)
		}
		t.routes[route.ID] = route
		t.routeOrder = append(t.routeOrder, route.ID)
	}

	stops, err := reader.Stops()
	if err != nil {
		return nil, fmt.Errorf("reading stops: %w", err)
	}
	for _, stop := range stops {
		if _, found := t.stops[stop.ID]; found {
			return nil, integrityErrorf("duplicate stop_id '%s'", stop.ID)
		}
		t.stops[stop.ID] = stop
	}

	calendars, err := reader.Calendars()
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	for _, cal := range calendars {
		if _, found := t.calendars[cal.ServiceID]; found {
			return nil, integrityErrorf("duplicate calendar service_id '%s'", cal.ServiceID)
		}
		t.calendars[cal.ServiceID] = cal
	}

	caldates, err := reader.CalendarDates()
	if err != nil {
		return nil, fmt.Errorf("reading calendar_dates: %w", err)
	}
	for _, cd := range caldates {
		t.exceptions[cd.ServiceID] = append(t.exceptions[cd.ServiceID], cd)
	}

	trips, err := reader.Trips()
	if err != nil {
		return nil, fmt.Errorf("reading trips: %w", err)
	}
	for _, trip := range trips {
		if _, found := t.trips[trip.ID]; found {
			return nil, integrityErrorf("duplicate trip_id '%s'", trip.ID)
		}
		if _, found := t.routes[trip.RouteID]; !found {
			return nil, integrityErrorf("trip '%s' references unknown route '%s'", trip.ID, trip.RouteID)
		}
		t.trips[trip.ID] = trip
		t.tripOrder = append(t.tripOrder, trip.ID)
	}

	stopTimes, err := reader.StopTimes()
	if err != nil {
		return nil, fmt.Errorf("reading stop_times: %w", err)
	}
	for _, st := range stopTimes {
		if _, found := t.trips[st.TripID]; !found {
			return nil, integrityErrorf("stop_time references unknown trip '%s'", st.TripID)
		}
		if _, found := t.stops[st.StopID]; !found {
			return nil, integrityErrorf("stop_time references unknown stop '%s'", st.StopID)
		}
		t.stopTimes[st.TripID] = append(t.stopTimes[st.TripID], st)
	}

	for _, tripID := range t.tripOrder {
		sts := t.stopTimes[tripID]
		sort.SliceStable(sts, func(i, j int) bool {
			return sts[i].StopSequence < sts[j].StopSequence
		})
		for i := 1; i < len(sts); i++ {
			if sts[i].StopSequence == sts[i-1].StopSequence {
				return nil, integrityErrorf(
					"duplicate stop_sequence %d for trip '%s'",
					sts[i].StopSequence, tripID,
				)
			}
			if sts[i].Departure < sts[i-1].Departure {
				return nil, integrityErrorf(
					"departure time decreases at stop_sequence %d for trip '%s'",
					sts[i].StopSequence, tripID,
				)
			}
		}
	}

	// Non-fatal oddities: GTFS producers occasionally ship trips
	// referencing service ids defined in neither calendar table, and
	// trips without a single stop time. The former are never active,
	// the latter carry no departure; both are surfaced as warnings.
	for _, tripID := range t.tripOrder {
		trip := t.trips[tripID]
		_, inCalendar := t.calendars[trip.ServiceID]
		_, inExceptions := t.exceptions[trip.ServiceID]
		if !inCalendar && !inExceptions {
			t.warn("trip '%s' references unknown service '%s'", tripID, trip.ServiceID)
		}
		if len(t.stopTimes[tripID]) == 0 {
			t.warn("trip '%s' has no stop times", tripID)
		}
	}

	return t, nil
}

func (t *Timetable) warn(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	t.warnings = append(t.warnings, msg)
	t.logger.Warn(msg)
}

// Warnings reports the non-fatal problems found while loading.
func (t *Timetable) Warnings() []string {
	return t.warnings
}

// Routes returns all routes in input order.
func (t *Timetable) Routes() []*model.Route {
	routes := make([]*model.Route, 0, len(t.routeOrder))
	for _, id := range t.routeOrder {
		routes = append(routes, t.routes[id])
	}
	return routes
}

// Route looks up a single route. The second return is false if the
// route id is absent from the dataset.
func (t *Timetable) Route(routeID string) (*model.Route, bool) {
	route, found := t.routes[routeID]
	return route, found
}
