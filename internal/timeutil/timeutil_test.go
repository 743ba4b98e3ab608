package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalculateDuration_Forward(t *testing.T) {
	t.Parallel()

	bed := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	cases := []struct {
		wake time.Time
		want float64
	}{
		{bed.Add(8 * time.Hour), 8.0},
		{bed.Add(7*time.Hour + 30*time.Minute), 7.5},
		{bed.Add(7*time.Hour + 20*time.Minute), 7.3},
		{bed.Add(6*time.Hour + 58*time.Minute), 7.0},
		{bed.Add(4 * time.Minute), 0.1},
		{bed, 0},
		{bed.Add(30 * time.Hour), 30.0},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CalculateDuration(bed, c.wake), c.wake.String())
	}
}

func TestCalculateDuration_WrapsOvernight(t *testing.T) {
	t.Parallel()

	// wake time entered on the same calendar day as bedtime
	bed := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	wake := time.Date(2026, 10, 18, 7, 0, 0, 0, time.UTC)
	require.Equal(t, 8.0, CalculateDuration(bed, wake))

	wake = time.Date(2026, 10, 18, 22, 59, 0, 0, time.UTC)
	require.Equal(t, 24.0, CalculateDuration(bed, wake))

	// more than a day backwards still ends up in [0, 24]
	wake = bed.Add(-25 * time.Hour)
	require.Equal(t, 23.0, CalculateDuration(bed, wake))
	require.Equal(t, 0.0, CalculateDuration(bed, bed.Add(-24*time.Hour)))
}

func TestCalculateDuration_IgnoresZoneOfInputs(t *testing.T) {
	t.Parallel()

	bed := time.Date(2026, 10, 18, 23, 0, 0, 0, time.FixedZone("A", 2*3600))
	wake := time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC) // 07:00 in A
	require.Equal(t, 8.0, CalculateDuration(bed, wake))
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	for in, want := range map[float64]string{
		8.0:   "8h",
		7.5:   "7h 30m",
		0.0:   "0h",
		7.3:   "7h 18m",
		0.1:   "0h 6m",
		7.999: "8h",
		-1:    "0h",
		10.25: "10h 15m",
	} {
		require.Equal(t, want, FormatDuration(in), in)
	}
}

func TestFormatTimeAndDate(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("X", -5*3600)
	ts := time.Date(2026, 10, 19, 4, 5, 0, 0, time.UTC) // 23:05 on the 18th in X

	require.Equal(t, "11:05 PM", FormatTime(ts, loc))
	require.Equal(t, "Sun, Oct 18", FormatDate(ts, loc))
	require.Equal(t, "Sun", DayLabel(ts, loc))
	require.Equal(t, "4:05 AM", FormatTime(ts, time.UTC))
}

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("X", 9*3600)
	ts := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC) // 05:00 on the 19th in X
	require.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, loc), StartOfDay(ts, loc))
}

func TestRoundTenth(t *testing.T) {
	t.Parallel()

	require.Equal(t, 6.5, RoundTenth(6.5))
	require.Equal(t, 0.3, RoundTenth(0.1+0.2))
	require.Equal(t, 7.3, RoundTenth(7.25))
}
