package domain

import (
	"fmt"
	"time"
)

// Period is one of the four 6-hour collection windows of a UTC day.
type Period string

const (
	Period00 Period = "00"
	Period06 Period = "06"
	Period12 Period = "12"
	Period18 Period = "18"
)

// Periods lists every period in chronological order.
var Periods = []Period{Period00, Period06, Period12, Period18}

// PeriodForHour maps an hour of day to its period. Hours outside [0,24) are
// folded into range first, so the function is total.
func PeriodForHour(hour int) Period {
	hour %= 24
	if hour < 0 {
		hour += 24
	}
	switch {
	case hour < 6:
		return Period00
	case hour < 12:
		return Period06
	case hour < 18:
		return Period12
	default:
		return Period18
	}
}

// PeriodOf returns the period containing t, evaluated in UTC.
func PeriodOf(t time.Time) Period {
	return PeriodForHour(t.UTC().Hour())
}

// ParsePeriod validates a textual period key.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid period %q: want one of 00, 06, 12, 18", s)
}

// Partition identifies where a run's artifacts land in the lake.
type Partition struct {
	CreationDate string // YYYY-MM-DD
	Period       Period
}

const creationDateLayout = "2006-01-02"

// PartitionOf derives the partition for a wall-clock instant.
func PartitionOf(t time.Time) Partition {
	return Partition{
		CreationDate: t.UTC().Format(creationDateLayout),
		Period:       PeriodOf(t),
	}
}

// NewPartition builds a partition from explicit overrides. Empty values fall
// back to the partition of now.
func NewPartition(now time.Time, creationDate, period string) (Partition, error) {
	p := PartitionOf(now)
	if creationDate != "" {
		if _, err := time.Parse(creationDateLayout, creationDate); err != nil {
			return Partition{}, fmt.Errorf("invalid creation date %q: %w", creationDate, err)
		}
		p.CreationDate = creationDate
	}
	if period != "" {
		parsed, err := ParsePeriod(period)
		if err != nil {
			return Partition{}, err
		}
		p.Period = parsed
	}
	return p, nil
}

// Key renders the partition-scoped object key for a dataset file.
func (p Partition) Key(dataset, ext string) string {
	return fmt.Sprintf("%s/creation_date=%s/period=%s/%s.%s",
		dataset, p.CreationDate, p.Period, dataset, ext)
}
