package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateRangeOverlaps(t *testing.T) {
	spring := DateRange{Start: day(2024, time.March, 1), End: day(2024, time.May, 31)}

	cases := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"disjoint after", DateRange{Start: day(2024, time.June, 1), End: day(2024, time.August, 31)}, false},
		{"disjoint before", DateRange{Start: day(2024, time.January, 1), End: day(2024, time.February, 29)}, false},
		{"shared boundary day", DateRange{Start: day(2024, time.May, 31), End: day(2024, time.July, 31)}, true},
		{"contained", DateRange{Start: day(2024, time.April, 1), End: day(2024, time.April, 30)}, true},
		{"containing", DateRange{Start: day(2024, time.January, 1), End: day(2024, time.December, 31)}, true},
		{"partial", DateRange{Start: day(2024, time.May, 1), End: day(2024, time.June, 30)}, true},
		{"identical", spring, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, spring.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(spring))
		})
	}
}

func TestDateRangeValidate(t *testing.T) {
	assert.NoError(t, DateRange{Start: day(2024, time.March, 1), End: day(2024, time.March, 1)}.Validate())
	assert.Error(t, DateRange{Start: day(2024, time.March, 2), End: day(2024, time.March, 1)}.Validate())
	assert.Error(t, DateRange{Start: day(2024, time.March, 1)}.Validate())

	// bounds outside the sanity window are corrupt exports
	farPast := time.Now().AddDate(-11, 0, 0)
	err := DateRange{Start: farPast, End: farPast.AddDate(0, 1, 0)}.Validate()
	assert.ErrorContains(t, err, "years in the past")

	farFuture := time.Now().AddDate(11, 0, 0)
	err = DateRange{Start: time.Now(), End: farFuture}.Validate()
	assert.ErrorContains(t, err, "years in the future")
}

func TestFindOverlaps(t *testing.T) {
	existing := []LabeledRange{
		{Label: "tariff 1", Range: DateRange{Start: day(2024, time.January, 1), End: day(2024, time.February, 29)}},
		{Label: "tariff 2", Range: DateRange{Start: day(2024, time.March, 1), End: day(2024, time.May, 31)}},
		{Label: "tariff 3", Range: DateRange{Start: day(2024, time.September, 1), End: day(2024, time.December, 31)}},
	}

	candidate := DateRange{Start: day(2024, time.May, 15), End: day(2024, time.September, 15)}
	conflicts := FindOverlaps(candidate, existing)
	assert.Equal(t, []string{
		"overlaps tariff 2 (2024-03-01 to 2024-05-31)",
		"overlaps tariff 3 (2024-09-01 to 2024-12-31)",
	}, conflicts)

	clear := DateRange{Start: day(2024, time.June, 1), End: day(2024, time.August, 31)}
	assert.Empty(t, FindOverlaps(clear, existing))
}
