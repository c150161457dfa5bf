package parse

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"tidbyt.dev/timetable/model"
	"tidbyt.dev/timetable/storage"
)

type CalendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

func ParseCalendarDates(writer storage.DatasetWriter, data io.Reader) error {
	calendarDateCsv := []*CalendarDateCSV{}
	if err := gocsv.Unmarshal(data, &calendarDateCsv); err != nil {
		return fmt.Errorf("unmarshaling calendar_dates csv: %w", err)
	}

	knownServiceDate := map[string]bool{}

	for _, cd := range calendarDateCsv {
		if cd.ServiceID == "" {
			return fmt.Errorf("empty service_id")
		}

		if cd.ExceptionType < 1 || cd.ExceptionType > 2 {
			return fmt.Errorf("illegal exception_type: '%d'", cd.ExceptionType)
		}

		_, err := time.ParseInLocation("20060102", cd.Date, time.UTC)
		if err != nil {
			return fmt.Errorf("parsing date '%s': %w", cd.Date, err)
		}

		serviceDate := fmt.Sprintf("%s-%s", cd.Date, cd.ServiceID)
		if knownServiceDate[serviceDate] {
			return fmt.Errorf("duplicate service/date: '%s'", serviceDate)
		}
		knownServiceDate[serviceDate] = true

		err = writer.WriteCalendarDate(&model.CalendarDate{
			ServiceID:     cd.ServiceID,
			Date:          cd.Date,
			ExceptionType: model.ExceptionType(cd.ExceptionType),
		})
		if err != nil {
			return fmt.Errorf("writing calendar date: %w", err)
		}
	}

	return nil
}
