package markethours

import "time"

// FX market holidays. Unlike equity exchanges the FX market observes
// very few full closures; Christmas and New Year's Day are the two the
// major liquidity providers go dark for.
var fxHolidays = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},   // New Year's Day
	{time.December, 25}, // Christmas
}

// pre-compute for fast lookup (month*100+day)
var holidaySet map[int]bool

func init() {
	holidaySet = make(map[int]bool, len(fxHolidays))
	for _, h := range fxHolidays {
		holidaySet[int(h.month)*100+h.day] = true
	}
}

// IsHoliday returns true if the date (in UTC) is an FX market holiday.
func IsHoliday(t time.Time) bool {
	utc := t.UTC()
	return holidaySet[int(utc.Month())*100+utc.Day()]
}
