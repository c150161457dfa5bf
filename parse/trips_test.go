package parse

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/timetable/model"
	"tidbyt.dev/timetable/storage"
)

func TestParseTrips(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		routes  map[string]bool
		trips   []*model.Trip
		err     bool
	}{
		{
			"minimal",
			`
trip_id,route_id,service_id
t1,r1,svc`,
			map[string]bool{"r1": true},
			[]*model.Trip{
				&model.Trip{ID: "t1", RouteID: "r1", ServiceID: "svc"},
			},
			false,
		},

		{
			"all fields, both directions",
			`
trip_id,route_id,service_id,trip_headsign,direction_id
t1,r1,svc,Downtown,0
t2,r1,svc,Uptown,1`,
			map[string]bool{"r1": true},
			[]*model.Trip{
				&model.Trip{ID: "t1", RouteID: "r1", ServiceID: "svc", Headsign: "Downtown", DirectionID: 0},
				&model.Trip{ID: "t2", RouteID: "r1", ServiceID: "svc", Headsign: "Uptown", DirectionID: 1},
			},
			false,
		},

		{
			// Service ids are not validated against the calendar
			// tables. Unused ids make the trip never-active, not
			// the dataset invalid.
			"service_id missing from calendars",
			`
trip_id,route_id,service_id
t1,r1,no_such_service`,
			map[string]bool{"r1": true},
			[]*model.Trip{
				&model.Trip{ID: "t1", RouteID: "r1", ServiceID: "no_such_service"},
			},
			false,
		},

		{
			"missing trip_id",
			`
trip_id,route_id,service_id
,r1,svc`,
			map[string]bool{"r1": true},
			nil,
			true,
		},

		{
			"missing route_id",
			`
trip_id,route_id,service_id
t1,,svc`,
			map[string]bool{"r1": true},
			nil,
			true,
		},

		{
			"missing service_id",
			`
trip_id,route_id,service_id
t1,r1,`,
			map[string]bool{"r1": true},
			nil,
			true,
		},

		{
			"unknown route_id",
			`
trip_id,route_id,service_id
t1,r2,svc`,
			map[string]bool{"r1": true},
			nil,
			true,
		},

		{
			"invalid direction_id",
			`
trip_id,route_id,service_id,direction_id
t1,r1,svc,2`,
			map[string]bool{"r1": true},
			nil,
			true,
		},

		{
			"repeated trip_id",
			`
trip_id,route_id,service_id
t1,r1,svc
t1,r1,svc`,
			map[string]bool{"r1": true},
			nil,
			true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := storage.NewSQLiteStorage()
			require.NoError(t, err)
			writer, err := s.GetWriter("test")
			require.NoError(t, err)

			tripIDs, err := ParseTrips(writer, bytes.NewBufferString(tc.content), tc.routes)
			if tc.err {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)

			reader, err := s.GetReader("test")
			require.NoError(t, err)
			trips, err := reader.Trips()
			require.NoError(t, err)
			sort.Slice(trips, func(i, j int) bool {
				return trips[i].ID < trips[j].ID
			})
			assert.Equal(t, tc.trips, trips)

			for _, trip := range tc.trips {
				assert.True(t, tripIDs[trip.ID])
			}
		})
	}
}
