package storage_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/timetable/model"
	"tidbyt.dev/timetable/storage"
)

// Tests of the storage implementations. The in-memory and sqlite
// implementations are always run, while postgres requires the
// TIMETABLE_PSQL_TEST environment variable to carry a connection
// string.

type StorageBuilder func() (storage.Storage, error)

func writeFixture(t *testing.T, s storage.Storage) {
	writer, err := s.GetWriter("unit-test")
	require.NoError(t, err)

	require.NoError(t, writer.WriteRoute(&model.Route{
		ID: "zr", ShortName: "Z", LongName: "Zig Route", Desc: "zigzag", Type: model.RouteTypeBus,
	}))
	require.NoError(t, writer.WriteRoute(&model.Route{
		ID: "ar", ShortName: "A", Type: model.RouteTypeTram,
	}))

	require.NoError(t, writer.WriteStop(&model.Stop{ID: "s1", Name: "First", Lat: 47.1, Lon: -122.1}))
	require.NoError(t, writer.WriteStop(&model.Stop{ID: "s2", Name: "Second", Lat: 47.2, Lon: -122.2}))

	require.NoError(t, writer.WriteCalendar(&model.Calendar{
		ServiceID: "wd",
		StartDate: "20250101",
		EndDate:   "20251231",
		Weekday:   1<<time.Monday | 1<<time.Friday,
	}))
	require.NoError(t, writer.WriteCalendarDate(&model.CalendarDate{
		ServiceID: "wd", Date: "20250704", ExceptionType: model.ExceptionRemoved,
	}))

	require.NoError(t, writer.WriteTrip(&model.Trip{
		ID: "zt", RouteID: "zr", ServiceID: "wd", Headsign: "Downtown", DirectionID: 0,
	}))
	require.NoError(t, writer.WriteTrip(&model.Trip{
		ID: "at", RouteID: "ar", ServiceID: "wd", DirectionID: 1,
	}))

	require.NoError(t, writer.BeginStopTimes())
	// Written out of order on purpose
	require.NoError(t, writer.WriteStopTime(&model.StopTime{
		TripID: "zt", StopID: "s2", StopSequence: 2, Arrival: "251000", Departure: "251000",
	}))
	require.NoError(t, writer.WriteStopTime(&model.StopTime{
		TripID: "at", StopID: "s1", StopSequence: 1, Arrival: "060000", Departure: "060100",
	}))
	require.NoError(t, writer.WriteStopTime(&model.StopTime{
		TripID: "zt", StopID: "s1", StopSequence: 1, Arrival: "245000", Departure: "245000",
	}))
	require.NoError(t, writer.EndStopTimes())

	require.NoError(t, writer.Close())
}

func testInitiallyEmpty(t *testing.T, sb StorageBuilder) {
	s, err := sb()
	require.NoError(t, err)

	writer, err := s.GetWriter("unit-test")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader, err := s.GetReader("unit-test")
	require.NoError(t, err)

	routes, err := reader.Routes()
	assert.NoError(t, err)
	assert.Len(t, routes, 0)
	stops, err := reader.Stops()
	assert.NoError(t, err)
	assert.Len(t, stops, 0)
	trips, err := reader.Trips()
	assert.NoError(t, err)
	assert.Len(t, trips, 0)
	stopTimes, err := reader.StopTimes()
	assert.NoError(t, err)
	assert.Len(t, stopTimes, 0)
	calendars, err := reader.Calendars()
	assert.NoError(t, err)
	assert.Len(t, calendars, 0)
	calendarDates, err := reader.CalendarDates()
	assert.NoError(t, err)
	assert.Len(t, calendarDates, 0)
}

func testBasicReadingAndWriting(t *testing.T, sb StorageBuilder) {
	s, err := sb()
	require.NoError(t, err)

	writeFixture(t, s)

	reader, err := s.GetReader("unit-test")
	require.NoError(t, err)

	// Routes and trips come back in write order
	routes, err := reader.Routes()
	require.NoError(t, err)
	assert.Equal(t, []*model.Route{
		&model.Route{ID: "zr", ShortName: "Z", LongName: "Zig Route", Desc: "zigzag", Type: model.RouteTypeBus},
		&model.Route{ID: "ar", ShortName: "A", Type: model.RouteTypeTram},
	}, routes)

	trips, err := reader.Trips()
	require.NoError(t, err)
	assert.Equal(t, []*model.Trip{
		&model.Trip{ID: "zt", RouteID: "zr", ServiceID: "wd", Headsign: "Downtown", DirectionID: 0},
		&model.Trip{ID: "at", RouteID: "ar", ServiceID: "wd", DirectionID: 1},
	}, trips)

	stops, err := reader.Stops()
	require.NoError(t, err)
	assert.ElementsMatch(t, []*model.Stop{
		&model.Stop{ID: "s1", Name: "First", Lat: 47.1, Lon: -122.1},
		&model.Stop{ID: "s2", Name: "Second", Lat: 47.2, Lon: -122.2},
	}, stops)

	calendars, err := reader.Calendars()
	require.NoError(t, err)
	assert.Equal(t, []*model.Calendar{
		&model.Calendar{
			ServiceID: "wd",
			StartDate: "20250101",
			EndDate:   "20251231",
			Weekday:   1<<time.Monday | 1<<time.Friday,
		},
	}, calendars)

	calendarDates, err := reader.CalendarDates()
	require.NoError(t, err)
	assert.Equal(t, []*model.CalendarDate{
		&model.CalendarDate{ServiceID: "wd", Date: "20250704", ExceptionType: model.ExceptionRemoved},
	}, calendarDates)
}

func testStopTimesOrdered(t *testing.T, sb StorageBuilder) {
	s, err := sb()
	require.NoError(t, err)

	writeFixture(t, s)

	reader, err := s.GetReader("unit-test")
	require.NoError(t, err)

	// Ordered by (trip_id, stop_sequence) regardless of write order.
	// Times past midnight come back verbatim.
	stopTimes, err := reader.StopTimes()
	require.NoError(t, err)
	assert.Equal(t, []*model.StopTime{
		&model.StopTime{TripID: "at", StopID: "s1", StopSequence: 1, Arrival: "060000", Departure: "060100"},
		&model.StopTime{TripID: "zt", StopID: "s1", StopSequence: 1, Arrival: "245000", Departure: "245000"},
		&model.StopTime{TripID: "zt", StopID: "s2", StopSequence: 2, Arrival: "251000", Departure: "251000"},
	}, stopTimes)
}

func testUnknownDataset(t *testing.T, sb StorageBuilder) {
	s, err := sb()
	require.NoError(t, err)

	_, err = s.GetReader("no-such-dataset")
	assert.Error(t, err)
}

func testDatasetOverwrite(t *testing.T, sb StorageBuilder) {
	s, err := sb()
	require.NoError(t, err)

	writeFixture(t, s)

	// A second writer for the same dataset starts from scratch
	writer, err := s.GetWriter("unit-test")
	require.NoError(t, err)
	require.NoError(t, writer.WriteRoute(&model.Route{ID: "only", ShortName: "O", Type: model.RouteTypeFerry}))
	require.NoError(t, writer.Close())

	reader, err := s.GetReader("unit-test")
	require.NoError(t, err)
	routes, err := reader.Routes()
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "only", routes[0].ID)
}

func TestStorage(t *testing.T) {
	for _, test := range []struct {
		Name string
		Test func(t *testing.T, sb StorageBuilder)
	}{
		{"InitiallyEmpty", testInitiallyEmpty},
		{"BasicReadingAndWriting", testBasicReadingAndWriting},
		{"StopTimesOrdered", testStopTimesOrdered},
		{"UnknownDataset", testUnknownDataset},
		{"DatasetOverwrite", testDatasetOverwrite},
	} {
		t.Run(fmt.Sprintf("%s memory", test.Name), func(t *testing.T) {
			test.Test(t, func() (storage.Storage, error) {
				return storage.NewMemoryStorage(), nil
			})
		})
		t.Run(fmt.Sprintf("%s SQLiteMemory", test.Name), func(t *testing.T) {
			test.Test(t, func() (storage.Storage, error) {
				return storage.NewSQLiteStorage()
			})
		})
		t.Run(fmt.Sprintf("%s SQLiteFile", test.Name), func(t *testing.T) {
			dir, err := os.MkdirTemp("", "timetable_storage_test")
			require.NoError(t, err)
			defer os.RemoveAll(dir)
			test.Test(t, func() (storage.Storage, error) {
				return storage.NewSQLiteStorage(storage.SQLiteConfig{OnDisk: true, Directory: dir})
			})
		})
		if connStr := os.Getenv("TIMETABLE_PSQL_TEST"); connStr != "" {
			t.Run(fmt.Sprintf("%s Postgres", test.Name), func(t *testing.T) {
				test.Test(t, func() (storage.Storage, error) {
					return storage.NewPSQLStorage(connStr, true)
				})
			})
		}
	}
}
