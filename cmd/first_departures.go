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

var firstDeparturesCmd = &cobra.Command{
	Use:   "first-departures",
	Short: "Writes first-departure tables for weekday, Saturday and Sunday",
	Args:  cobra.NoArgs,
	RunE:  firstDepartures,
}

var outputDir string

func init() {
	firstDeparturesCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory to write CSV reports to")
	rootCmd.AddCommand(firstDeparturesCmd)
}

type firstDepartureCSV struct {
	RouteID                string  `csv:"route_id"`
	Direction              string  `csv:"direction"`
	TripID                 string  `csv:"trip_id"`
	OriginName             string  `csv:"origin_name"`
	OriginLatitude         float64 `csv:"origin_latitude"`
	OriginLongitude        float64 `csv:"origin_longitude"`
	OriginDepartureTime    string  `csv:"origin_departure_time"`
	DestinationName        string  `csv:"destination_name"`
	DestinationLatitude    float64 `csv:"destination_latitude"`
	DestinationLongitude   float64 `csv:"destination_longitude"`
	DestinationArrivalTime string  `csv:"destination_arrival_time"`
}

func firstDepartures(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	tt, err := loadTimetable(logger)
	if err != nil {
		return err
	}

	for _, day := range []model.DayType{model.DayTypeWeekday, model.DayTypeSaturday, model.DayTypeSunday} {
		rows := []*firstDepartureCSV{}
		for _, departure := range tt.FirstDepartures(day) {
			rows = append(rows, &firstDepartureCSV{
				RouteID:                departure.RouteID,
				Direction:              directionLabel(departure.DirectionID),
				TripID:                 departure.TripID,
				OriginName:             departure.OriginName,
				OriginLatitude:         departure.OriginLat,
				OriginLongitude:        departure.OriginLon,
				OriginDepartureTime:    departure.OriginDeparture,
				DestinationName:        departure.DestinationName,
				DestinationLatitude:    departure.DestinationLat,
				DestinationLongitude:   departure.DestinationLon,
				DestinationArrivalTime: departure.DestinationArrival,
			})
		}

		path := filepath.Join(outputDir, fmt.Sprintf("route_timetable_%s.csv", day))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}

		err = gocsv.MarshalFile(&rows, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		logger.Info("wrote first departures",
			zap.String("day_type", day.String()),
			zap.String("path", path),
			zap.Int("rows", len(rows)),
		)
	}

	for _, warning := range tt.Warnings() {
		logger.Warn(warning)
	}

	return nil
}
