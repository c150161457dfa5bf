package storage

import (
	"tidbyt.dev/timetable/model"
)

// Storage holds parsed GTFS datasets, keyed by name. A dataset is
// written once by the loader and then read by the timetable engine;
// there is no partial update.
type Storage interface {
	// Gets a writer for the named dataset. Existing records for the
	// dataset are discarded.
	GetWriter(dataset string) (DatasetWriter, error)

	// Gets a reader for the named dataset.
	GetReader(dataset string) (DatasetReader, error)
}

// Writes GTFS records for a single dataset.
//
// As stop_times.txt tends to be very large, BeginStopTimes() and
// EndStopTimes() are called before and after all calls to
// WriteStopTime(), allowing transactions/batching/whathaveyou.
type DatasetWriter interface {
	WriteRoute(route *model.Route) error
	WriteStop(stop *model.Stop) error
	WriteTrip(trip *model.Trip) error
	WriteCalendar(cal *model.Calendar) error
	WriteCalendarDate(caldate *model.CalendarDate) error
	BeginStopTimes() error
	WriteStopTime(stopTime *model.StopTime) error
	EndStopTimes() error
	Close() error
}

// Reads back the tables of a single dataset.
//
// Routes() and Trips() preserve the order records were written in. The
// reports built downstream are ordered "routes as they appear in the
// input", so this ordering is part of the contract. StopTimes() is
// ordered by (trip_id, stop_sequence).
type DatasetReader interface {
	Routes() ([]*model.Route, error)
	Stops() ([]*model.Stop, error)
	Trips() ([]*model.Trip, error)
	StopTimes() ([]*model.StopTime, error)
	Calendars() ([]*model.Calendar, error)
	CalendarDates() ([]*model.CalendarDate, error)
}
