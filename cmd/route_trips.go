package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tidbyt.dev/timetable/model"
)

var routeTripsCmd = &cobra.Command{
	Use:   "route-trips <route_id>",
	Short: "Writes every trip of one route with its full stop sequence",
	Args:  cobra.ExactArgs(1),
	RunE:  routeTrips,
}

var routeTripsOutputDir string

func init() {
	routeTripsCmd.Flags().StringVarP(&routeTripsOutputDir, "output-dir", "o", ".", "Directory to write the CSV report to")
	rootCmd.AddCommand(routeTripsCmd)
}

type routeTripCSV struct {
	RouteID       string `csv:"route_id"`
	TripID        string `csv:"trip_id"`
	DayType       string `csv:"day_type"`
	Direction     string `csv:"direction"`
	ServiceID     string `csv:"service_id"`
	Headsign      string `csv:"headsign"`
	StopSequence  uint32 `csv:"stop_sequence"`
	StopID        string `csv:"stop_id"`
	StopName      string `csv:"stop_name"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
}

func routeTrips(cmd *cobra.Command, args []string) error {
	routeID := args[0]

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	tt, err := loadTimetable(logger)
	if err != nil {
		return err
	}

	days := []model.DayType{model.DayTypeWeekday, model.DayTypeSaturday, model.DayTypeSunday}
	trips, err := tt.TripsForRoute(routeID, days)
	if err != nil {
		return err
	}

	rows := []*routeTripCSV{}
	for _, trip := range trips {
		for _, stop := range trip.Stops {
			rows = append(rows, &routeTripCSV{
				RouteID:       routeID,
				TripID:        trip.TripID,
				DayType:       trip.DayType.String(),
				Direction:     directionLabel(trip.DirectionID),
				ServiceID:     trip.ServiceID,
				Headsign:      trip.Headsign,
				StopSequence:  stop.Sequence,
				StopID:        stop.StopID,
				StopName:      stop.StopName,
				ArrivalTime:   stop.Arrival,
				DepartureTime: stop.Departure,
			})
		}
	}

	path := filepath.Join(routeTripsOutputDir, fmt.Sprintf("route_%s_all_trips.csv", routeID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	err = gocsv.MarshalFile(&rows, f)
	f.Close()
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	logger.Info("wrote route trips",
		zap.String("route_id", routeID),
		zap.String("path", path),
		zap.Int("trips", len(trips)),
		zap.Int("rows", len(rows)),
	)

	return nil
}
