package practrack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/practrack/practrack"
)

func mustClock(t *testing.T, s string) practrack.Clock {
	t.Helper()
	c, err := practrack.ParseClock(s)
	require.NoError(t, err)
	return c
}

func TestComputeHours(t *testing.T) {
	date, err := practrack.ParseDate("2025-03-01")
	require.NoError(t, err)

	cases := []struct {
		name       string
		start, end string
		want       string
	}{
		{"day shift", "09:00", "17:00", "8"},
		{"overnight wraps to next day", "22:00", "02:00", "4"},
		{"equal times are zero", "10:00", "10:00", "0"},
		{"rounds to two places", "09:00", "09:20", "0.33"},
		{"rounds half away from zero", "09:00", "09:00:27", "0.01"},
		{"seconds are kept", "08:00:00", "08:45:00", "0.75"},
		{"one minute short of a day", "00:01", "00:00", "23.98"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := practrack.ComputeHours(date, mustClock(t, tc.start), mustClock(t, tc.end))
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseClock(t *testing.T) {
	assert.Equal(t, "07:05:00", mustClock(t, "07:05").String())
	assert.Equal(t, "23:59:59", mustClock(t, " 23:59:59 ").String())

	for _, bad := range []string{"", "7am", "24:00", "12:60", "1:2"} {
		_, err := practrack.ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewClock_Wraps(t *testing.T) {
	assert.Equal(t, "01:00:00", practrack.NewClock(25, 0, 0).String())
	assert.Equal(t, "23:00:00", practrack.NewClock(-1, 0, 0).String())
}

func TestParseDate(t *testing.T) {
	d, err := practrack.ParseDate("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31", d.Format(practrack.DateLayout))

	_, err = practrack.ParseDate("31/12/2025")
	assert.Error(t, err)
}
