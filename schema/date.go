package schema

import (
	"fmt"
	"time"
)

// DateValue is a calendar date without a time of day. time.Time always
// carries a clock and a location, so dates get their own value type.
type DateValue struct {
	Year  int
	Month time.Month
	Day   int
}

func DateValueOf(t time.Time) DateValue {
	year, month, day := t.Date()
	return DateValue{Year: year, Month: month, Day: day}
}

func (d DateValue) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
