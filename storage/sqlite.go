package storage

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"tidbyt.dev/timetable/model"
)

type SQLiteConfig struct {
	OnDisk    bool
	Directory string
}

type SQLiteStorage struct {
	SQLiteConfig

	datasets map[string]*sql.DB
}

type SQLiteDatasetWriter struct {
	db                 *sql.DB
	stopTimeInsertStmt *sql.Stmt
	stopTimeInsertTx   *sql.Tx
}

type SQLiteDatasetReader struct {
	db *sql.DB
}

func NewSQLiteStorage(cfg ...SQLiteConfig) (*SQLiteStorage, error) {
	onDisk := false
	directory := ""
	if len(cfg) > 0 {
		onDisk = cfg[0].OnDisk
		directory = cfg[0].Directory
	}

	return &SQLiteStorage{
		SQLiteConfig: SQLiteConfig{
			OnDisk:    onDisk,
			Directory: directory,
		},
		datasets: map[string]*sql.DB{},
	}, nil
}

func (s *SQLiteStorage) GetWriter(dataset string) (DatasetWriter, error) {
	sourceName := ":memory:"
	if s.OnDisk {
		sourceName = s.Directory + "/" + dataset + ".db"
		// delete file if it exists
		if _, err := os.Stat(sourceName); err == nil {
			err := os.Remove(sourceName)
			if err != nil {
				return nil, fmt.Errorf("removing existing database: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for name, query := range map[string]string{
		"routes": `
CREATE TABLE routes (
    id TEXT PRIMARY KEY,
    short_name TEXT,
    long_name TEXT,
    desc TEXT,
    type INTEGER NOT NULL
);`,
		"stops": `
CREATE TABLE stops (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    lat REAL NOT NULL,
    lon REAL NOT NULL
);`,
		"trips": `
CREATE TABLE trips (
    id TEXT PRIMARY KEY,
    route_id TEXT NOT NULL,
    service_id TEXT NOT NULL,
    headsign TEXT,
    direction_id INTEGER
);
CREATE INDEX trips_route_id ON trips (route_id);
CREATE INDEX trips_service_id ON trips (service_id);
`,
		"stop_times": `
CREATE TABLE stop_times (
    trip_id TEXT NOT NULL,
    stop_id TEXT NOT NULL,
    stop_sequence INTEGER NOT NULL,
    arrival_time TEXT NOT NULL,
    departure_time TEXT NOT NULL
);
CREATE INDEX stop_times_trip_id ON stop_times (trip_id);
CREATE INDEX stop_times_departure_time ON stop_times (departure_time);
`,
		"calendar": `
CREATE TABLE calendar (
    service_id TEXT PRIMARY KEY,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    weekday INTEGER NOT NULL
);`,
		"calendar_dates": `
CREATE TABLE calendar_dates (
    service_id TEXT NOT NULL,
    date TEXT NOT NULL,
    exception_type INTEGER NOT NULL
);`,
	} {
		_, err = db.Exec(query)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating %s table: %s", name, err)
		}
	}

	s.datasets[dataset] = db

	return &SQLiteDatasetWriter{
		db: db,
	}, nil
}

func (s *SQLiteStorage) GetReader(dataset string) (DatasetReader, error) {
	db, found := s.datasets[dataset]
	if found {
		return &SQLiteDatasetReader{
			db: db,
		}, nil
	}
	if !s.OnDisk {
		return nil, fmt.Errorf("dataset %s does not exist", dataset)
	}

	sourceName := s.Directory + "/" + dataset + ".db"
	if _, err := os.Stat(sourceName); os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset %s does not exist at %s", dataset, sourceName)
	}

	db, err := sql.Open("sqlite3", sourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s.datasets[dataset] = db

	return &SQLiteDatasetReader{
		db: db,
	}, nil
}

func (w *SQLiteDatasetWriter) WriteRoute(route *model.Route) error {
	_, err := w.db.Exec(`
INSERT INTO routes (id, short_name, long_name, desc, type)
VALUES (?, ?, ?, ?, ?)`,
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

func (w *SQLiteDatasetWriter) WriteStop(stop *model.Stop) error {
	_, err := w.db.Exec(`
INSERT INTO stops (id, name, lat, lon)
VALUES (?, ?, ?, ?)`,
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

func (w *SQLiteDatasetWriter) WriteTrip(trip *model.Trip) error {
	_, err := w.db.Exec(`
INSERT INTO trips (id, route_id, service_id, headsign, direction_id)
VALUES (?, ?, ?, ?, ?)`,
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

func (w *SQLiteDatasetWriter) WriteCalendar(cal *model.Calendar) error {
	_, err := w.db.Exec(`
INSERT INTO calendar (service_id, start_date, end_date, weekday)
VALUES (?, ?, ?, ?)`,
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

func (w *SQLiteDatasetWriter) WriteCalendarDate(caldate *model.CalendarDate) error {
	_, err := w.db.Exec(`
INSERT INTO calendar_dates (service_id, date, exception_type)
VALUES (?, ?, ?)`,
		caldate.ServiceID,
		caldate.Date,
		caldate.ExceptionType,
	)
	if err != nil {
		return fmt.Errorf("inserting calendar date: %w", err)
	}
	return nil
}

func (w *SQLiteDatasetWriter) BeginStopTimes() error {
	// transaction with prepared statement
	var err error
	w.stopTimeInsertTx, err = w.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning stop_time insert transaction: %w", err)
	}

	w.stopTimeInsertStmt, err = w.stopTimeInsertTx.Prepare(`
INSERT INTO stop_times (trip_id, stop_id, stop_sequence, arrival_time, departure_time)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		w.stopTimeInsertTx.Rollback()
		w.stopTimeInsertTx = nil
		return fmt.Errorf("preparing stop_time insert: %w", err)
	}

	return nil
}

func (w *SQLiteDatasetWriter) WriteStopTime(stopTime *model.StopTime) error {
	if w.stopTimeInsertStmt == nil {
		return fmt.Errorf("BeginStopTimes not called")
	}

	_, err := w.stopTimeInsertStmt.Exec(
		stopTime.TripID,
		stopTime.StopID,
		stopTime.StopSequence,
		stopTime.Arrival,
		stopTime.Departure,
	)
	if err != nil {
		return fmt.Errorf("inserting stop_time: %w", err)
	}
	return nil
}

func (w *SQLiteDatasetWriter) EndStopTimes() error {
	if w.stopTimeInsertTx == nil {
		return fmt.Errorf("BeginStopTimes not called")
	}

	w.stopTimeInsertStmt.Close()
	w.stopTimeInsertStmt = nil

	err := w.stopTimeInsertTx.Commit()
	w.stopTimeInsertTx = nil
	if err != nil {
		return fmt.Errorf("committing stop_times: %w", err)
	}

	return nil
}

func (w *SQLiteDatasetWriter) Close() error {
	return nil
}

func (r *SQLiteDatasetReader) Routes() ([]*model.Route, error) {
	rows, err := r.db.Query(`
SELECT id, short_name, long_name, desc, type
FROM routes
ORDER BY rowid`)
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

func (r *SQLiteDatasetReader) Stops() ([]*model.Stop, error) {
	rows, err := r.db.Query(`
SELECT id, name, lat, lon
FROM stops
ORDER BY rowid`)
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

func (r *SQLiteDatasetReader) Trips() ([]*model.Trip, error) {
	rows, err := r.db.Query(`
SELECT id, route_id, service_id, headsign, direction_id
FROM trips
ORDER BY rowid`)
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

func (r *SQLiteDatasetReader) StopTimes() ([]*model.StopTime, error) {
	rows, err := r.db.Query(`
SELECT trip_id, stop_id, stop_sequence, arrival_time, departure_time
FROM stop_times
ORDER BY trip_id, stop_sequence`)
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

func (r *SQLiteDatasetReader) Calendars() ([]*model.Calendar, error) {
	rows, err := r.db.Query(`
SELECT service_id, start_date, end_date, weekday
FROM calendar`)
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

func (r *SQLiteDatasetReader) CalendarDates() ([]*model.CalendarDate, error) {
	rows, err := r.db.Query(`
SELECT service_id, date, exception_type
FROM calendar_dates`)
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
