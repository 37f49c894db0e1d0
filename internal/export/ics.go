package export

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/diz-scraper/internal/calendar"
	"github.com/pfrederiksen/diz-scraper/internal/seminar"
)

// WriteICS writes seminars with a parseable date to an iCalendar file at
// path and returns the number of events written
func WriteICS(path string, seminars []*seminar.Seminar) (int, error) {
	if err := ensureDir(path); err != nil {
		return 0, err
	}

	ics, count := calendar.GenerateICS(seminars, time.Now())
	if err := os.WriteFile(path, []byte(ics), 0644); err != nil {
		return 0, fmt.Errorf("writing calendar file: %w", err)
	}
	return count, nil
}
