package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/sleep-keeper/internal/errs"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizeNote(t *testing.T) {
	t.Parallel()

	require.Nil(t, NormalizeNote(nil))
	require.Nil(t, NormalizeNote(ptr("")))
	require.Nil(t, NormalizeNote(ptr("  \t\n ")))
	require.Equal(t, "woke up twice", *NormalizeNote(ptr("  woke up twice ")))

	long := strings.Repeat("ж", MaxNoteLen+15)
	got := NormalizeNote(&long)
	require.Equal(t, MaxNoteLen, len([]rune(*got)))
}

func TestNormalizeQuality(t *testing.T) {
	t.Parallel()

	require.Nil(t, NormalizeQuality(nil))
	require.Nil(t, NormalizeQuality(ptr(0)))
	require.Nil(t, NormalizeQuality(ptr(6)))
	require.Equal(t, 3, *NormalizeQuality(ptr(3)))
}

func TestEntryInput_Validate(t *testing.T) {
	t.Parallel()

	bed := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	wake := bed.Add(8 * time.Hour)

	require.NoError(t, EntryInput{Bedtime: bed, WakeTime: wake}.Validate())
	require.NoError(t, EntryInput{Bedtime: bed, WakeTime: wake, Quality: ptr(5), Note: ptr("ok")}.Validate())

	cases := map[string]EntryInput{
		"no bedtime":   {WakeTime: wake},
		"no wake time": {Bedtime: bed},
		"quality low":  {Bedtime: bed, WakeTime: wake, Quality: ptr(0)},
		"quality high": {Bedtime: bed, WakeTime: wake, Quality: ptr(6)},
		"note too long": {Bedtime: bed, WakeTime: wake,
			Note: ptr(strings.Repeat("a", MaxNoteLen+1))},
	}
	for name, in := range cases {
		require.ErrorIs(t, in.Validate(), errs.ErrValidation, name)
	}

	// surrounding blanks do not count towards the limit
	padded := "  " + strings.Repeat("ж", MaxNoteLen) + "\n"
	require.NoError(t, EntryInput{Bedtime: bed, WakeTime: wake, Note: &padded}.Validate())

	err := EntryInput{Bedtime: bed, WakeTime: wake, Quality: ptr(9)}.Validate()
	require.ErrorContains(t, err, "Quality 9 is above 5")
	err = EntryInput{WakeTime: wake}.Validate()
	require.ErrorContains(t, err, "Bedtime is required")
}

func TestSleepEntry_CloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	e := SleepEntry{ID: uuid.Must(uuid.NewV4()), Note: ptr("a"), Quality: ptr(2)}
	c := e.Clone()
	*c.Note = "b"
	*c.Quality = 4
	require.Equal(t, "a", *e.Note)
	require.Equal(t, 2, *e.Quality)
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Clock{
		"22:00": {22, 0},
		"07:05": {7, 5},
		"7:30":  {7, 30},
		"00:00": {0, 0},
		"23:59": {23, 59},
	} {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "24:00", "12:60", "7", "07:5", "aa:bb", "+7:00", "123:00"} {
		_, err := ParseClock(in)
		require.ErrorIs(t, err, errs.ErrValidation, in)
	}

	require.Equal(t, "07:05", Clock{7, 5}.String())
}

func TestClock_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct {
		At Clock `json:"at"`
	}{At: Clock{6, 45}})
	require.NoError(t, err)
	require.JSONEq(t, `{"at":"06:45"}`, string(b))

	var back struct {
		At Clock `json:"at"`
	}
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, Clock{6, 45}, back.At)

	require.Error(t, json.Unmarshal([]byte(`{"at":"99:00"}`), &back))
}

func TestClock_Next(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("X", 3*3600)
	now := time.Date(2026, 10, 19, 21, 30, 0, 0, loc)

	require.Equal(t, time.Date(2026, 10, 19, 22, 0, 0, 0, loc), Clock{22, 0}.Next(now, loc))
	require.Equal(t, time.Date(2026, 10, 20, 7, 0, 0, 0, loc), Clock{7, 0}.Next(now, loc))
	// exactly now rolls to tomorrow
	require.Equal(t, time.Date(2026, 10, 20, 21, 30, 0, 0, loc), Clock{21, 30}.Next(now, loc))
}

func TestSettingsPatch_ApplyAndValidate(t *testing.T) {
	t.Parallel()

	uid := uuid.Must(uuid.NewV4())
	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s := DefaultSettings(uid, now)
	require.Equal(t, 8.0, s.TargetHours)
	require.False(t, s.ReminderEnabled)
	require.Equal(t, "22:00", s.ReminderTime.String())
	require.False(t, s.OnboardingCompleted)

	require.True(t, SettingsPatch{}.Empty())
	require.Equal(t, s, SettingsPatch{}.Apply(s))

	p := SettingsPatch{ReminderEnabled: ptr(true), ReminderTime: ptr(Clock{7, 0})}
	require.False(t, p.Empty())
	got := p.Apply(s)
	require.True(t, got.ReminderEnabled)
	require.Equal(t, Clock{7, 0}, got.ReminderTime)
	require.Equal(t, 8.0, got.TargetHours)

	require.NoError(t, p.Validate())
	require.ErrorIs(t, SettingsPatch{TargetHours: ptr(0.0)}.Validate(), errs.ErrValidation)
	require.ErrorIs(t, SettingsPatch{TargetHours: ptr(25.0)}.Validate(), errs.ErrValidation)
	require.ErrorIs(t, SettingsPatch{ReminderTime: &Clock{Hour: 30}}.Validate(), errs.ErrValidation)
	require.ErrorIs(t, SettingsPatch{ReminderTime: &Clock{Minute: -1}}.Validate(), errs.ErrValidation)
	require.NoError(t, SettingsPatch{TargetHours: ptr(24.0), ReminderTime: &Clock{23, 59}}.Validate())
	require.ErrorContains(t, SettingsPatch{TargetHours: ptr(-1.0)}.Validate(), "TargetHours")
}
