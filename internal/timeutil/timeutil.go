package timeutil

import (
	"fmt"
	"time"
)

const isoDate = "2006-01-02"

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// LongDateID formats an ISO date the way the page shows it, e.g.
// "2023-01-15" -> "15 Januari 2023".
func LongDateID(iso string) (string, error) {
	parsed, err := time.Parse(isoDate, iso)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", iso, err)
	}
	return fmt.Sprintf("%d %s %d", parsed.Day(), indonesianMonths[parsed.Month()-1], parsed.Year()), nil
}
