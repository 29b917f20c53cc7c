package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// isoLayout renders timestamps the way state files and batch variables
// expect them: ISO-8601 with an explicit offset.
const isoLayout = "2006-01-02T15:04:05-07:00"

// Timestamp is a template-visible point in time. DateOnly values (from
// today(), yesterday(), days_ago(n)) render as YYYY-MM-DD; full values
// render in ISO-8601.
type Timestamp struct {
	Time     time.Time
	DateOnly bool
}

// NewTimestamp wraps t as a full timestamp value.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// NewDate wraps t as a date-only value, truncated to midnight in t's zone.
func NewDate(t time.Time) Timestamp {
	y, m, d := t.Date()
	return Timestamp{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location()), DateOnly: true}
}

func (ts Timestamp) String() string {
	if ts.DateOnly {
		return ts.Time.Format("2006-01-02")
	}
	return ts.Time.Format(isoLayout)
}

// ISOFormat returns the ISO-8601 rendering: YYYY-MM-DD for DateOnly values,
// the full timestamp with offset otherwise.
func (ts Timestamp) ISOFormat() string {
	if ts.DateOnly {
		return ts.Time.Format("2006-01-02")
	}
	return ts.Time.Format(isoLayout)
}

// Strftime formats the timestamp with a Python-style directive string.
func (ts Timestamp) Strftime(format string) string {
	return strftime(ts.Time, format)
}

// Timedelta is a template-visible duration built by timedelta(...).
type Timedelta struct {
	Duration time.Duration
}

func (td Timedelta) String() string { return td.Duration.String() }

// strftime translates the common Python strftime directives into Go
// formatting. Unknown directives are kept literally (minus the percent).
func strftime(t time.Time, format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i == len(format)-1 {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			b.WriteString(t.Format("2006"))
		case 'y':
			b.WriteString(t.Format("06"))
		case 'm':
			b.WriteString(t.Format("01"))
		case 'd':
			b.WriteString(t.Format("02"))
		case 'H':
			b.WriteString(t.Format("15"))
		case 'I':
			b.WriteString(t.Format("03"))
		case 'M':
			b.WriteString(t.Format("04"))
		case 'S':
			b.WriteString(t.Format("05"))
		case 'p':
			b.WriteString(t.Format("PM"))
		case 'z':
			b.WriteString(t.Format("-0700"))
		case 'j':
			b.WriteString(fmt.Sprintf("%03d", t.YearDay()))
		case 'a':
			b.WriteString(t.Format("Mon"))
		case 'A':
			b.WriteString(t.Format("Monday"))
		case 'b':
			b.WriteString(t.Format("Jan"))
		case 'B':
			b.WriteString(t.Format("January"))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

// formatValue renders an evaluated expression result back into the literal
// string stream.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case Timestamp:
		return val.String()
	case time.Time:
		return val.Format(isoLayout)
	case Timedelta:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
