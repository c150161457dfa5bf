package timetable

import (
	"tidbyt.dev/timetable/model"
)

// One row of the first-departure report: the earliest trip for a
// (route, direction) pair on a day type, with its origin and
// destination. Times are "HH:MM:SS" service-day offsets and may exceed
// 24:00:00 for service past midnight.
type FirstDeparture struct {
	RouteID     string
	DirectionID int8
	DayType     model.DayType
	TripID      string

	OriginStopID    string
	OriginName      string
	OriginLat       float64
	OriginLon       float64
	OriginDeparture string

	DestinationStopID  string
	DestinationName    string
	DestinationLat     float64
	DestinationLon     float64
	DestinationArrival string
}

// FirstDepartures reports the earliest scheduled trip per (route,
// direction) for the given day type. Routes appear in input order,
// direction 0 before direction 1. Pairs with no service on the day
// type are omitted: their absence is the report's way of saying "no
// service".
//
// When two trips share the minimal departure time, the one with the
// lexicographically smaller trip id wins. This output is compared
// against third-party published schedules, so it has to be
// reproducible run over run.
func (t *Timetable) FirstDepartures(day model.DayType) []FirstDeparture {
	rows := t.ScheduleRows(t.ActiveServices(day))

	type groupKey struct {
		RouteID     string
		DirectionID int8
	}

	first := map[groupKey]ScheduleRow{}
	for _, row := range rows {
		k := groupKey{row.Trip.RouteID, row.Trip.DirectionID}

		cur, found := first[k]
		if !found {
			first[k] = row
			continue
		}

		dep := row.StopTimes[0].Departure
		curDep := cur.StopTimes[0].Departure
		if dep < curDep || (dep == curDep && row.Trip.ID < cur.Trip.ID) {
			first[k] = row
		}
	}

	departures := []FirstDeparture{}
	for _, routeID := range t.routeOrder {
		for _, direction := range []int8{0, 1} {
			row, found := first[groupKey{routeID, direction}]
			if !found {
				continue
			}

			origin := row.StopTimes[0]
			destination := row.StopTimes[len(row.StopTimes)-1]
			originStop := t.stops[origin.StopID]
			destinationStop := t.stops[destination.StopID]

			departures = append(departures, FirstDeparture{
				RouteID:     routeID,
				DirectionID: direction,
				DayType:     day,
				TripID:      row.Trip.ID,

				OriginStopID:    originStop.ID,
				OriginName:      originStop.Name,
				OriginLat:       originStop.Lat,
				OriginLon:       originStop.Lon,
				OriginDeparture: model.DisplayTime(origin.Departure),

				DestinationStopID:  destinationStop.ID,
				DestinationName:    destinationStop.Name,
				DestinationLat:     destinationStop.Lat,
				DestinationLon:     destinationStop.Lon,
				DestinationArrival: model.DisplayTime(destination.Arrival),
			})
		}
	}

	return departures
}
