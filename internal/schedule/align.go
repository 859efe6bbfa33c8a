package schedule

import (
	"errors"
	"fmt"
	"time"
)

// FirstWeekday is the weekday at the top of every calendar column.
const FirstWeekday = time.Sunday

// MinYear is the last year that is rejected by AlignStart.
const MinYear = 1970

var ErrInvalidYear = errors.New("invalid year")

// AlignStart returns midnight UTC of the first calendar cell for year, moved
// to the first FirstWeekday on or after January 1 and then shifted by
// offsetWeeks whole weeks. Negative offsets move the drawing into the
// previous year.
func AlignStart(year, offsetWeeks int) (time.Time, error) {
	if year <= MinYear {
		return time.Time{}, fmt.Errorf("%w: %d must be after %d", ErrInvalidYear, year, MinYear)
	}
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	shift := (int(FirstWeekday) - int(jan1.Weekday()) + 7) % 7
	return jan1.AddDate(0, 0, offsetWeeks*7+shift), nil
}
