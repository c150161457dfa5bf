package parse

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidbyt.dev/timetable/model"
	"tidbyt.dev/timetable/storage"
)

func buildZip(t *testing.T, files map[string][]string) []byte {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// A simple GTFS feed with all data timetable derivation needs
func fixtureSimple() map[string][]string {
	return map[string][]string{
		"agency.txt": []string{
			"agency_timezone,agency_name,agency_url",
			"America/Los_Angeles,Fake Agency,http://agency/index.html",
		},
		"routes.txt": []string{
			"route_id,route_short_name,route_type",
			"r,R,3",
		},
		"calendar.txt": []string{
			"service_id,monday,start_date,end_date",
			"mondays,1,20190101,20190301",
		},
		"calendar_dates.txt": []string{
			"service_id,date,exception_type",
			"mondays,20190302,1",
		},
		"trips.txt": []string{
			"route_id,service_id,trip_id",
			"r,mondays,t",
		},
		"stops.txt": []string{
			"stop_id,stop_name,stop_lat,stop_lon",
			"s,S,12,34",
		},
		"stop_times.txt": []string{
			"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
			"t,12:00:00,12:00:00,s,1",
		},
	}
}

func TestParseValidFeed(t *testing.T) {
	s, err := storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	require.NoError(t, ParseDataset(writer, buildZip(t, fixtureSimple())))

	reader, err := s.GetReader("test")
	require.NoError(t, err)

	routes, err := reader.Routes()
	assert.NoError(t, err)
	assert.Equal(t, []*model.Route{&model.Route{
		ID:        "r",
		ShortName: "R",
		Type:      3,
	}}, routes)

	calendar, err := reader.Calendars()
	assert.NoError(t, err)
	assert.Equal(t, []*model.Calendar{&model.Calendar{
		ServiceID: "mondays",
		Weekday:   1 << time.Monday,
		StartDate: "20190101",
		EndDate:   "20190301",
	}}, calendar)

	calendarDates, err := reader.CalendarDates()
	assert.NoError(t, err)
	assert.Equal(t, []*model.CalendarDate{&model.CalendarDate{
		ServiceID:     "mondays",
		Date:          "20190302",
		ExceptionType: model.ExceptionAdded,
	}}, calendarDates)

	trips, err := reader.Trips()
	assert.NoError(t, err)
	assert.Equal(t, []*model.Trip{&model.Trip{
		ID:        "t",
		RouteID:   "r",
		ServiceID: "mondays",
	}}, trips)

	stops, err := reader.Stops()
	assert.NoError(t, err)
	assert.Equal(t, []*model.Stop{&model.Stop{
		ID:   "s",
		Name: "S",
		Lat:  12,
		Lon:  34,
	}}, stops)

	stopTimes, err := reader.StopTimes()
	assert.NoError(t, err)
	assert.Equal(t, []*model.StopTime{&model.StopTime{
		TripID:       "t",
		StopID:       "s",
		StopSequence: 1,
		Arrival:      "120000",
		Departure:    "120000",
	}}, stopTimes)
}

func TestParseMissingRequiredFiles(t *testing.T) {
	for _, filename := range []string{
		"routes.txt",
		"stops.txt",
		"trips.txt",
		"stop_times.txt",
	} {
		t.Run("without "+filename, func(t *testing.T) {
			files := fixtureSimple()
			delete(files, filename)

			s, err := storage.NewSQLiteStorage()
			require.NoError(t, err)
			writer, err := s.GetWriter("test")
			require.NoError(t, err)

			err = ParseDataset(writer, buildZip(t, files))
			assert.ErrorContains(t, err, "missing "+filename)
		})
	}
}

func TestParseRequiresSomeCalendar(t *testing.T) {
	// Either calendar file alone is enough
	files := fixtureSimple()
	delete(files, "calendar.txt")
	s, err := storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err := s.GetWriter("test")
	require.NoError(t, err)
	assert.NoError(t, ParseDataset(writer, buildZip(t, files)))

	files = fixtureSimple()
	delete(files, "calendar_dates.txt")
	s, err = storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err = s.GetWriter("test")
	require.NoError(t, err)
	assert.NoError(t, ParseDataset(writer, buildZip(t, files)))

	// Both missing is an error
	files = fixtureSimple()
	delete(files, "calendar.txt")
	delete(files, "calendar_dates.txt")
	s, err = storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err = s.GetWriter("test")
	require.NoError(t, err)
	err = ParseDataset(writer, buildZip(t, files))
	assert.ErrorContains(t, err, "missing calendar.txt and calendar_dates.txt")
}

func TestParseIgnoresAgencyAndExtraFiles(t *testing.T) {
	files := fixtureSimple()
	// An agency.txt that would fail any validation, plus an unknown
	// file. Neither is read.
	files["agency.txt"] = []string{"bogus"}
	files["shapes.txt"] = []string{"shape_id", "sh1"}

	s, err := storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	assert.NoError(t, ParseDataset(writer, buildZip(t, files)))
}

func TestParseFilesInSubdirectory(t *testing.T) {
	// Some agencies zip up a directory instead of the files
	files := map[string][]string{}
	for filename, content := range fixtureSimple() {
		files["gtfs/"+filename] = content
	}

	s, err := storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	require.NoError(t, ParseDataset(writer, buildZip(t, files)))

	reader, err := s.GetReader("test")
	require.NoError(t, err)
	routes, err := reader.Routes()
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

func TestParseStripsByteOrderMark(t *testing.T) {
	files := fixtureSimple()
	files["routes.txt"][0] = "\xEF\xBB\xBF" + files["routes.txt"][0]

	s, err := storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	require.NoError(t, ParseDataset(writer, buildZip(t, files)))

	reader, err := s.GetReader("test")
	require.NoError(t, err)
	routes, err := reader.Routes()
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "r", routes[0].ID)
}

func TestParseGarbageZip(t *testing.T) {
	s, err := storage.NewSQLiteStorage()
	require.NoError(t, err)
	writer, err := s.GetWriter("test")
	require.NoError(t, err)

	err = ParseDataset(writer, []byte("this is not a zip file"))
	assert.ErrorContains(t, err, "unzipping")
}
