package runner

import (
	"fmt"
	"time"

	"github.com/kbukum/dft/errors"
)

// Window is one half-open batch interval [Start, End).
type Window struct {
	Start           time.Time
	End             time.Time
	Period          string
	EventTimeColumn string
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// batchDuration maps a batch_size tag to its fixed duration. month and
// year are 30 and 365 days; the approximation is part of the contract.
func batchDuration(size string) (time.Duration, bool) {
	switch size {
	case "10min":
		return 10 * time.Minute, true
	case "hour":
		return time.Hour, true
	case "day":
		return 24 * time.Hour, true
	case "week":
		return 7 * 24 * time.Hour, true
	case "month":
		return 30 * 24 * time.Hour, true
	case "year":
		return 365 * 24 * time.Hour, true
	}
	return 0, false
}

// truncateToBatch floors t to a multiple of d counted from the Unix epoch,
// preserving the location.
func truncateToBatch(t time.Time, d time.Duration) time.Time {
	step := int64(d / time.Second)
	secs := t.Unix()
	rem := secs % step
	if rem < 0 {
		rem += step
	}
	return time.Unix(secs-rem, 0).In(t.Location())
}

// timestampLayouts are accepted for begin/end declarations and cursors,
// tried in order. Layouts without an offset are read in the invocation's
// local zone.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(pipeline, field, value string, loc *time.Location) (time.Time, error) {
	for i, layout := range timestampLayouts {
		var t time.Time
		var err error
		if i == 0 {
			t, err = time.Parse(layout, value)
		} else {
			t, err = time.ParseInLocation(layout, value, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.MicrobatchConfig(pipeline,
		fmt.Sprintf("cannot parse %s timestamp %q", field, value))
}
