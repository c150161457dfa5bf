package storage

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"tidbyt.dev/timetable/model"
)

const (
	PSQLStopTimeBatchSize = 5000
)

type PSQLStorage struct {
	db *sql.DB
}

type PSQLDatasetWriter struct {
	id          string
	db          *sql.DB
	pos         int
	stopTimeBuf []*model.StopTime
}

type PSQLDatasetReader struct {
	id string
	db *sql.DB
}

// Creates a new Postgres Storage using the provided connection string.
//
// If clearDB is true, the database will be cleared on startup. You
// probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`
DROP TABLE IF EXISTS routes;
DROP TABLE IF EXISTS stops;
DROP TABLE IF EXISTS trips;
DROP TABLE IF EXISTS stop_times;
DROP TABLE IF EXISTS calendar;
DROP TABLE IF EXISTS calendar_dates;`)
		if err != nil {
			return nil, fmt.Errorf("failed to clear db: %w", err)
		}
	}

	return &PSQLStorage{db: db}, nil
}

func (s *PSQLStorage) GetWriter(dataset string) (DatasetWriter, error) {
	tables := map[string]string{
		"routes": `
CREATE TABLE IF NOT EXISTS routes (
    dataset TEXT NOT NULL,
    pos INTEGER NOT NULL,
    id TEXT NOT NULL,
    short_name TEXT,
    long_name TEXT,
    description TEXT,
    type INTEGER NOT NULL,
    PRIMARY KEY(dataset, id)
);`,
		"stops": `
CREATE TABLE IF NOT EXISTS stops (
    dataset TEXT NOT NULL,
    id TEXT NOT NULL,
    name TEXT NOT NULL,
    lat DOUBLE PRECISION NOT NULL,
    lon DOUBLE PRECISION NOT NULL,
    PRIMARY KEY(dataset, id)
);`,
		"trips": `
CREATE TABLE IF NOT EXISTS trips (
    dataset TEXT NOT NULL,
    pos INTEGER NOT NULL,
    id TEXT NOT NULL,
    route_id TEXT NOT NULL,
    service_id TEXT NOT NULL,
    headsign TEXT,
    direction_id INTEGER,
    PRIMARY KEY(dataset, id)
);
CREATE INDEX IF NOT EXISTS trips_route_id ON trips (route_id);
CREATE INDEX IF NOT EXISTS trips_service_id ON trips (service_id);
`,
		"stop_times": `
CREATE TABLE IF NOT EXISTS stop_times (
    dataset TEXT NOT NULL,
    trip_id TEXT NOT NULL,
    stop_id TEXT NOT NULL,
    stop_sequence INTEGER NOT NULL,
    arrival_time TEXT NOT NULL,
    departure_time TEXT NOT NULL,
    PRIMARY KEY(dataset, trip_id, stop_id, stop_sequence)
);
CREATE INDEX IF NOT EXISTS stop_times_trip_id ON stop_times (trip_id);
`,
		"calendar": `
CREATE TABLE IF NOT EXISTS calendar (
    dataset TEXT NOT NULL,
    service_id TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    weekday INTEGER NOT NULL,
    PRIMARY KEY(dataset, service_id)
);`,
		"calendar_dates": `
CREATE TABLE IF NOT EXISTS calendar_dates (
    dataset TEXT NOT NULL,
    service_id TEXT NOT NULL,
    date TEXT NOT NULL,
    exception_type INTEGER NOT NULL,
    PRIMARY KEY(dataset, service_id, date)
);`,
	}

	// Create tables if they don't exist
	for name, query := range tables {
		_, err := s.db.Exec(query)
		if err != nil {
			return nil, fmt.Errorf("creating %s table: %s", name, err)
		}
	}

	// In case the dataset already exists, delete all records
	for name := range tables {
		_, err := s.db.Exec(`DELETE FROM `+name+` WHERE dataset = $1`, dataset)
		if err != nil {
			return nil, fmt.Errorf("deleting %s records: %s", name, err)
		}
	}

	return &PSQLDatasetWriter{
		id: dataset,
		db: s.db,
	}, nil
}

func (s *PSQLStorage) GetReader(dataset string) (DatasetReader, error) {
	var count int
	err := s.db.QueryRow(`
SELECT COUNT(*)
FROM information_schema.tables
WHERE table_name = 'routes'`).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("checking for routes table: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("dataset %s does not exist", dataset)
	}

	return &PSQLDatasetReader{
		id: dataset,
		db: s.db,
	}, nil
}

func (w *PSQLDatasetWriter) WriteRoute(route *model.Route) error {
	w.pos++
	_, err := w.db.Exec(`
INSERT INTO routes (dataset, pos, id, short_name, long_name, description, type)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.id,
		w.pos,
		route.ID,
		route.ShortName,
		route.LongName,
		route.Desc,
		route.Type,
	)
	if err != nil {
		return fmt.Errorf("inserting route: %w", err)
	}
	return nil
}

func (w *PSQLDatasetWriter) WriteStop(stop *model.Stop) error {
	_, err := w.db.Exec(`
INSERT INTO stops (dataset, id, name, lat, lon)
VALUES ($1, $2, $3, $4, $5)`,
		w.id,
		stop.ID,
		stop.Name,
		stop.Lat,
		stop.Lon,
	)
	if err != nil {
		return fmt.Errorf("inserting stop: %w", err)
	}
	return nil
}

func (w *PSQLDatasetWriter) WriteTrip(trip *model.Trip) error {
	w.pos++
	_, err := w.db.Exec(`
INSERT INTO trips (dataset, pos, id, route_id, service_id, headsign, direction_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		w.id,
		w.pos,
		trip.ID,
		trip.RouteID,
		trip.ServiceID,
		trip.Headsign,
		trip.DirectionID,
	)
	if err != nil {
		return fmt.Errorf("inserting trip: %w", err)
	}
	return nil
}

func (w *PSQLDatasetWriter) WriteCalendar(cal *model.Calendar) error {
	_, err := w.db.Exec(`
INSERT INTO calendar (dataset, service_id, start_date, end_date, weekday)
VALUES ($1, $2, $3, $4, $5)`,
		w.id,
		cal.ServiceID,
		cal.StartDate,
		cal.EndDate,
		cal.Weekday,
	)
	if err != nil {
		return fmt.Errorf("inserting calendar: %w", err)
	}
	return nil
}

func (w *PSQLDatasetWriter) WriteCalendarDate(caldate *model.CalendarDate) error {
	_, err := w.db.Exec(`
INSERT INTO calendar_dates (dataset, service_id, date, exception_type)
VALUES ($1, $2, $3, $4)`,
		w.id,
		caldate.ServiceID,
		caldate.Date,
		caldate.ExceptionType,
	)
	if err != nil {
		return fmt.Errorf("inserting calendar date: %w", err)
	}
	return nil
}

func (w *PSQLDatasetWriter) BeginStopTimes() error {
	return nil
}

func (w *PSQLDatasetWriter) WriteStopTime(stopTime *model.StopTime) error {
	w.stopTimeBuf = append(w.stopTimeBuf, stopTime)

	if len(w.stopTimeBuf) >= PSQLStopTimeBatchSize {
		err := w.flushStopTimes()
		if err != nil {
			return fmt.Errorf("flushing stop_times: %w", err)
		}
	}

	return nil
}

func (w *PSQLDatasetWriter) EndStopTimes() error {
	if len(w.stopTimeBuf) > 0 {
		err := w.flushStopTimes()
		if err != nil {
			return fmt.Errorf("flushing stop_times: %w", err)
		}
	}
	return nil
}

func (w *PSQLDatasetWriter) flushStopTimes() error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(pq.CopyIn(
		"stop_times", "dataset", "trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time",
	))
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, stopTime := range w.stopTimeBuf {
		_, err = stmt.Exec(
			w.id,
			stopTime.TripID,
			stopTime.StopID,
			stopTime.StopSequence,
			stopTime.Arrival,
			stopTime.Departure,
		)
		if err != nil {
			return fmt.Errorf("COPY stop_time: %w", err)
		}
	}

	_, err = stmt.Exec()
	if err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}

	w.stopTimeBuf = nil

	return nil
}

func (w *PSQLDatasetWriter) Close() error {
	_, err := w.db.Exec(`ANALYZE`)
	if err != nil {
		return fmt.Errorf("analyzing: %w", err)
	}
	return nil
}

func (r *PSQLDatasetReader) Routes() ([]*model.Route, error) {
	rows, err := r.db.Query(`
SELECT id, short_name, long_name, description, type
FROM routes
WHERE dataset = $1
ORDER BY pos`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying routes: %w", err)
	}
	defer rows.Close()

	routes := []*model.Route{}
	for rows.Next() {
		route := &model.Route{}
		err = rows.Scan(
			&route.ID,
			&route.ShortName,
			&route.LongName,
			&route.Desc,
			&route.Type,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		routes = append(routes, route)
	}

	return routes, nil
}

func (r *PSQLDatasetReader) Stops() ([]*model.Stop, error) {
	rows, err := r.db.Query(`
SELECT id, name, lat, lon
FROM stops
WHERE dataset = $1`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying stops: %w", err)
	}
	defer rows.Close()

	stops := []*model.Stop{}
	for rows.Next() {
		stop := &model.Stop{}
		err = rows.Scan(
			&stop.ID,
			&stop.Name,
			&stop.Lat,
			&stop.Lon,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stop: %w", err)
		}
		stops = append(stops, stop)
	}

	return stops, nil
}

func (r *PSQLDatasetReader) Trips() ([]*model.Trip, error) {
	rows, err := r.db.Query(`
SELECT id, route_id, service_id, headsign, direction_id
FROM trips
WHERE dataset = $1
ORDER BY pos`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying trips: %w", err)
	}
	defer rows.Close()

	trips := []*model.Trip{}
	for rows.Next() {
		trip := &model.Trip{}
		err = rows.Scan(
			&trip.ID,
			&trip.RouteID,
			&trip.ServiceID,
			&trip.Headsign,
			&trip.DirectionID,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning trip: %w", err)
		}
		trips = append(trips, trip)
	}

	return trips, nil
}

func (r *PSQLDatasetReader) StopTimes() ([]*model.StopTime, error) {
	rows, err := r.db.Query(`
SELECT trip_id, stop_id, stop_sequence, arrival_time, departure_time
FROM stop_times
WHERE dataset = $1
ORDER BY trip_id, stop_sequence`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying stop_times: %w", err)
	}
	defer rows.Close()

	stopTimes := []*model.StopTime{}
	for rows.Next() {
		st := &model.StopTime{}
		err = rows.Scan(
			&st.TripID,
			&st.StopID,
			&st.StopSequence,
			&st.Arrival,
			&st.Departure,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stop_time: %w", err)
		}
		stopTimes = append(stopTimes, st)
	}

	return stopTimes, nil
}

func (r *PSQLDatasetReader) Calendars() ([]*model.Calendar, error) {
	rows, err := r.db.Query(`
SELECT service_id, start_date, end_date, weekday
FROM calendar
WHERE dataset = $1`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying calendar: %w", err)
	}
	defer rows.Close()

	cals := []*model.Calendar{}
	for rows.Next() {
		cal := &model.Calendar{}
		err = rows.Scan(
			&cal.ServiceID,
			&cal.StartDate,
			&cal.EndDate,
			&cal.Weekday,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning calendar: %w", err)
		}
		cals = append(cals, cal)
	}

	return cals, nil
}

func (r *PSQLDatasetReader) CalendarDates() ([]*model.CalendarDate, error) {
	rows, err := r.db.Query(`
SELECT service_id, date, exception_type
FROM calendar_dates
WHERE dataset = $1`, r.id)
	if err != nil {
		return nil, fmt.Errorf("querying calendar_dates: %w", err)
	}
	defer rows.Close()

	cds := []*model.CalendarDate{}
	for rows.Next() {
		cd := &model.CalendarDate{}
		err = rows.Scan(
			&cd.ServiceID,
			&cd.Date,
			&cd.ExceptionType,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning calendar_date: %w", err)
		}
		cds = append(cds, cd)
	}

	return cds, nil
}
