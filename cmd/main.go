package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tidbyt.dev/timetable"
	"tidbyt.dev/timetable/parse"
	"tidbyt.dev/timetable/storage"
)

var rootCmd = &cobra.Command{
	Use:          "timetable",
	Short:        "GTFS timetable tool",
	Long:         "Derives timetable reports from a static GTFS dataset",
	SilenceUsage: true,
}

var (
	gtfsPath       string
	storageBackend string
	storageDir     string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&gtfsPath, "gtfs", "g", "", "Path to GTFS zip file")
	rootCmd.PersistentFlags().StringVarP(&storageBackend, "storage", "s", "memory", "Dataset storage backend (memory or sqlite)")
	rootCmd.PersistentFlags().StringVarP(&storageDir, "storage-dir", "", ".", "Directory for on-disk dataset storage")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadTimetable(logger *zap.Logger) (*timetable.Timetable, error) {
	if gtfsPath == "" {
		return nil, fmt.Errorf("GTFS path is required")
	}

	var s storage.Storage
	var err error
	switch storageBackend {
	case "memory":
		s = storage.NewMemoryStorage()
	case "sqlite":
		s, err = storage.NewSQLiteStorage(storage.SQLiteConfig{OnDisk: true, Directory: storageDir})
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown storage backend '%s'", storageBackend)
	}

	buf, err := os.ReadFile(gtfsPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", gtfsPath, err)
	}

	writer, err := s.GetWriter("cli")
	if err != nil {
		return nil, fmt.Errorf("getting dataset writer: %w", err)
	}

	if err := parse.ParseDataset(writer, buf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", gtfsPath, err)
	}

	reader, err := s.GetReader("cli")
	if err != nil {
		return nil, fmt.Errorf("getting dataset reader: %w", err)
	}

	tt, err := timetable.New(reader, timetable.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("loading timetable: %w", err)
	}

	return tt, nil
}

// Direction labels matching the published schedule tables.
func directionLabel(directionID int8) string {
	if directionID == 1 {
		return "SB"
	}
	return "NB"
}
