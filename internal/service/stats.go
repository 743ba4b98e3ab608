package service

import (
	"time"

	"github.com/and161185/sleep-keeper/internal/model"
	"github.com/and161185/sleep-keeper/internal/timeutil"
)

const statsDays = 7

// WeeklyStats buckets entries into the seven local calendar days ending with
// the day of now, oldest first. An entry counts in full towards the day that
// contains its bedtime. The average covers only days with a nonzero total;
// TotalEntries counts every entry, in the window or not.
func WeeklyStats(entries []model.SleepEntry, now time.Time, loc *time.Location) model.WeeklyStats {
	if loc == nil {
		loc = time.Local
	}
	var st model.WeeklyStats
	st.TotalEntries = len(entries)

	today := timeutil.StartOfDay(now, loc)
	for i := range statsDays {
		d := today.AddDate(0, 0, i-(statsDays-1))
		st.Days[i] = d
		st.Labels[i] = timeutil.DayLabel(d, loc)
	}

	for _, e := range entries {
		bed := timeutil.StartOfDay(e.Bedtime, loc)
		for i, d := range st.Days {
			if bed.Equal(d) {
				st.Hours[i] += e.Duration
				break
			}
		}
	}

	var sum float64
	n := 0
	for i, h := range st.Hours {
		st.Hours[i] = timeutil.RoundTenth(h)
		if st.Hours[i] > 0 {
			sum += st.Hours[i]
			n++
		}
	}
	if n > 0 {
		st.Average = timeutil.RoundTenth(sum / float64(n))
	}
	return st
}
