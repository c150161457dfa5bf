package model

import (
	"fmt"
	"strconv"
	"time"
)

// Holds all external facing types and constants.

type RouteType int

const (
	RouteTypeTram       RouteType = 0
	RouteTypeSubway               = 1
	RouteTypeRail                 = 2
	RouteTypeBus                  = 3
	RouteTypeFerry                = 4
	RouteTypeCable                = 5
	RouteTypeAerial               = 6
	RouteTypeFunicular            = 7
	RouteTypeTrolleybus           = 11
	RouteTypeMonorail             = 12
)

type ExceptionType int8

const (
	// Service added for the date, overriding the calendar default.
	ExceptionAdded ExceptionType = 1
	// Service removed for the date, overriding the calendar default.
	ExceptionRemoved ExceptionType = 2
)

// The recurring weekly patterns reports are built for. A closed enum
// rather than an open string, so a typo'd label fails loudly instead of
// producing an empty report.
type DayType int

const (
	DayTypeWeekday DayType = iota
	DayTypeSaturday
	DayTypeSunday
)

func (d DayType) String() string {
	switch d {
	case DayTypeWeekday:
		return "weekday"
	case DayTypeSaturday:
		return "saturday"
	case DayTypeSunday:
		return "sunday"
	}
	return fmt.Sprintf("daytype(%d)", int(d))
}

// Bitmask of time.Weekday bits represented by the day type. Weekday is
// the OR of Monday through Friday.
func (d DayType) WeekdayMask() int8 {
	switch d {
	case DayTypeWeekday:
		return 1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday | 1<<time.Thursday | 1<<time.Friday
	case DayTypeSaturday:
		return 1 << time.Saturday
	case DayTypeSunday:
		return 1 << time.Sunday
	}
	return 0
}

type Route struct {
	ID        string
	ShortName string
	LongName  string
	Desc      string
	Type      RouteType
}

type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

type Trip struct {
	ID          string
	RouteID     string
	ServiceID   string
	Headsign    string
	DirectionID int8
}

// Calendar defines the default weekly operating pattern for a service
// id. Weekday is a bitmask of time.Weekday bits. StartDate and EndDate
// are inclusive YYYYMMDD strings.
type Calendar struct {
	ServiceID string
	StartDate string
	EndDate   string
	Weekday   int8
}

// CalendarDate overrides the Calendar default for a single date.
type CalendarDate struct {
	ServiceID     string
	Date          string
	ExceptionType ExceptionType
}

// Arrival and Departure are "HHMMSS" strings, offsets from midnight of
// the service day. Hours may exceed 24 for trips running past midnight.
// Zero padding keeps lexicographic order equal to chronological order,
// so times are never normalized modulo 24h.
type StopTime struct {
	TripID       string
	StopID       string
	StopSequence uint32
	Arrival      string
	Departure    string
}

func (st *StopTime) ArrivalTime() time.Duration {
	h, _ := strconv.Atoi(st.Arrival[0:2])
	m, _ := strconv.Atoi(st.Arrival[2:4])
	s, _ := strconv.Atoi(st.Arrival[4:6])
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

func (st *StopTime) DepartureTime() time.Duration {
	h, _ := strconv.Atoi(st.Departure[0:2])
	m, _ := strconv.Atoi(st.Departure[2:4])
	s, _ := strconv.Atoi(st.Departure[4:6])
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// Translates an internal "HHMMSS" time into the "HH:MM:SS" form used in
// report rows. Hours >= 24 pass through untouched.
func DisplayTime(hhmmss string) string {
	if len(hhmmss) != 6 {
		return hhmmss
	}
	return hhmmss[0:2] + ":" + hhmmss[2:4] + ":" + hhmmss[4:6]
}
