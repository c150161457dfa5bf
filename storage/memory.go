package storage

import (
	"fmt"
	"sort"
	"strings"

	"tidbyt.dev/timetable/model"
)

// In memory implementation of Storage below

type MemoryStorage struct {
	Datasets map[string]*MemoryDataset
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Datasets: map[string]*MemoryDataset{},
	}
}

func (s *MemoryStorage) GetWriter(dataset string) (DatasetWriter, error) {
	d := &MemoryDataset{}
	s.Datasets[dataset] = d
	return d, nil
}

func (s *MemoryStorage) GetReader(dataset string) (DatasetReader, error) {
	d, ok := s.Datasets[dataset]
	if !ok {
		return nil, fmt.Errorf("dataset %s does not exist", dataset)
	}
	return d, nil
}

// A single dataset's tables, in write order. Implements both
// DatasetWriter and DatasetReader.
type MemoryDataset struct {
	routes        []*model.Route
	stops         []*model.Stop
	trips         []*model.Trip
	stopTimes     []*model.StopTime
	calendars     []*model.Calendar
	calendarDates []*model.CalendarDate
}

func (d *MemoryDataset) WriteRoute(route *model.Route) error {
	d.routes = append(d.routes, route)
	return nil
}

func (d *MemoryDataset) WriteStop(stop *model.Stop) error {
	d.stops = append(d.stops, stop)
	return nil
}

func (d *MemoryDataset) WriteTrip(trip *model.Trip) error {
	d.trips = append(d.trips, trip)
	return nil
}

func (d *MemoryDataset) WriteCalendar(cal *model.Calendar) error {
	d.calendars = append(d.calendars, cal)
	return nil
}

func (d *MemoryDataset) WriteCalendarDate(caldate *model.CalendarDate) error {
	d.calendarDates = append(d.calendarDates, caldate)
	return nil
}

func (d *MemoryDataset) BeginStopTimes() error {
	return nil
}

func (d *MemoryDataset) WriteStopTime(stopTime *model.StopTime) error {
	d.stopTimes = append(d.stopTimes, stopTime)
	return nil
}

func (d *MemoryDataset) EndStopTimes() error {
	sort.SliceStable(d.stopTimes, func(i, j int) bool {
		cmp := strings.Compare(d.stopTimes[i].TripID, d.stopTimes[j].TripID)
		if cmp != 0 {
			return cmp < 0
		}
		return d.stopTimes[i].StopSequence < d.stopTimes[j].StopSequence
	})
	return nil
}

func (d *MemoryDataset) Close() error {
	return nil
}

func (d *MemoryDataset) Routes() ([]*model.Route, error) {
	return d.routes, nil
}

func (d *MemoryDataset) Stops() ([]*model.Stop, error) {
	return d.stops, nil
}

func (d *MemoryDataset) Trips() ([]*model.Trip, error) {
	return d.trips, nil
}

func (d *MemoryDataset) StopTimes() ([]*model.StopTime, error) {
	return d.stopTimes, nil
}

func (d *MemoryDataset) Calendars() ([]*model.Calendar, error) {
	return d.calendars, nil
}

func (d *MemoryDataset) CalendarDates() ([]*model.CalendarDate, error) {
	return d.calendarDates, nil
}
