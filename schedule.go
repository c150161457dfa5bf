package timetable

import (
	"go.uber.org/zap"

	"tidbyt.dev/timetable/model"
)

// ScheduleRow is the denormalized join of a trip, its route, and its
// stop times ordered by stop sequence. One row per scheduled run; trips
// are never deduplicated across route or direction.
type ScheduleRow struct {
	Trip      *model.Trip
	Route     *model.Route
	StopTimes []*model.StopTime
}

// ScheduleRows builds one row per trip whose service id is in
// serviceIDs, in input table order. Trips without stop times carry no
// departure and are skipped.
func (t *Timetable) ScheduleRows(serviceIDs []string) []ScheduleRow {
	active := map[string]bool{}
	for _, serviceID := range serviceIDs {
		active[serviceID] = true
	}

	rows := []ScheduleRow{}
	for _, tripID := range t.tripOrder {
		trip := t.trips[tripID]
		if !active[trip.ServiceID] {
			continue
		}

		stopTimes := t.stopTimes[tripID]
		if len(stopTimes) == 0 {
			t.logger.Warn("skipping trip without stop times",
				zap.String("trip_id", tripID),
			)
			continue
		}

		rows = append(rows, ScheduleRow{
			Trip:      trip,
			Route:     t.routes[trip.RouteID],
			StopTimes: stopTimes,
		})
	}

	return rows
}
