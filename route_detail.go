package timetable

import (
	"sort"

	"tidbyt.dev/timetable/model"
)

// A single scheduled stop within a trip. Arrival and Departure are
// "HH:MM:SS" service-day offsets.
type StopCall struct {
	Sequence  uint32
	StopID    string
	StopName  string
	Arrival   string
	Departure string
}

// One trip of the route detail report, tagged with the day type that
// produced it.
type TripDetail struct {
	TripID      string
	DayType     model.DayType
	DirectionID int8
	ServiceID   string
	Headsign    string
	Stops       []StopCall
}

// TripsForRoute reports every trip the route operates, once per
// requested day type, each trip with its full ordered stop sequence.
// Day types appear in request order; within a day type, trips are
// ordered by first departure, then trip id.
//
// A route id absent from the dataset fails with UnknownRouteError. A
// known route with no service yields an empty result; the two cases
// are deliberately distinguishable.
func (t *Timetable) TripsForRoute(routeID string, days []model.DayType) ([]TripDetail, error) {
	if _, found := t.routes[routeID]; !found {
		return nil, &UnknownRouteError{RouteID: routeID}
	}

	details := []TripDetail{}
	for _, day := range days {
		dayDetails := []TripDetail{}

		for _, row := range t.ScheduleRows(t.ActiveServices(day)) {
			if row.Trip.RouteID != routeID {
				continue
			}

			stops := make([]StopCall, 0, len(row.StopTimes))
			for _, st := range row.StopTimes {
				stops = append(stops, StopCall{
					Sequence:  st.StopSequence,
					StopID:    st.StopID,
					StopName:  t.stops[st.StopID].Name,
					Arrival:   model.DisplayTime(st.Arrival),
					Departure: model.DisplayTime(st.Departure),
				})
			}

			dayDetails = append(dayDetails, TripDetail{
				TripID:      row.Trip.ID,
				DayType:     day,
				DirectionID: row.Trip.DirectionID,
				ServiceID:   row.Trip.ServiceID,
				Headsign:    row.Trip.Headsign,
				Stops:       stops,
			})
		}

		sort.SliceStable(dayDetails, func(i, j int) bool {
			if dayDetails[i].Stops[0].Departure != dayDetails[j].Stops[0].Departure {
				return dayDetails[i].Stops[0].Departure < dayDetails[j].Stops[0].Departure
			}
			return dayDetails[i].TripID < dayDetails[j].TripID
		})

		details = append(details, dayDetails...)
	}

	return details, nil
}
