package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/sleep-keeper/internal/identity"
	"github.com/and161185/sleep-keeper/internal/model"
	"github.com/and161185/sleep-keeper/internal/service"
	"github.com/and161185/sleep-keeper/internal/timeutil"
)

const localLayout = "2006-01-02 15:04"

// parseInstant accepts RFC 3339 or a local "2006-01-02 15:04" in loc.
func parseInstant(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(localLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: want RFC 3339 or %q", s, localLayout)
	}
	return t, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("want on|off, got %q", s)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageErr("%s: %v", fs.Name(), err)
	}
	return nil
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

type entryView struct {
	ID       string    `json:"id"`
	Date     string    `json:"date"`
	Bed      string    `json:"bed"`
	Wake     string    `json:"wake"`
	Slept    string    `json:"slept"`
	Bedtime  time.Time `json:"bedtime"`
	WakeTime time.Time `json:"wakeTime"`
	Duration float64   `json:"duration"`
	Note     *string   `json:"note,omitempty"`
	Quality  *int      `json:"quality,omitempty"`
}

func (a *app) entryView(e model.SleepEntry) entryView {
	return entryView{
		ID:       e.ID.String(),
		Date:     timeutil.FormatDate(e.Bedtime, a.loc),
		Bed:      timeutil.FormatTime(e.Bedtime, a.loc),
		Wake:     timeutil.FormatTime(e.WakeTime, a.loc),
		Slept:    timeutil.FormatDuration(e.Duration),
		Bedtime:  e.Bedtime.In(a.loc),
		WakeTime: e.WakeTime.In(a.loc),
		Duration: e.Duration,
		Note:     e.Note,
		Quality:  e.Quality,
	}
}

func (a *app) cmdLogin(args []string) error {
	fs := newFlagSet("login")
	token := fs.String("token", "", "access token issued by the identity provider")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *token == "" {
		return usageErr("login: need -token")
	}
	if a.cfg.Auth.JWTSecret == "" {
		return errors.New("login: auth.jwt_secret is not configured")
	}
	id, err := identity.FromToken(*token, []byte(a.cfg.Auth.JWTSecret), a.cfg.Auth.Leeway)
	if err != nil {
		return err
	}
	exp, ok := identity.ExpiresAt(*token)
	if !ok {
		exp = a.now().Add(15 * time.Minute)
	}
	if err := saveToken(a.cfg.TokenPath(), *token, exp); err != nil {
		return err
	}
	return printJSON(a.out, map[string]any{"userId": id.UserID().String(), "expiresAt": exp})
}

func (a *app) cmdLogout() error {
	if err := removeToken(a.cfg.TokenPath()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, "ok")
	return err
}

func (a *app) cmdList(ctx context.Context, s *service.Session, _ []string) error {
	list, err := s.Entries.Load(ctx)
	if err != nil {
		return err
	}
	rows := make([]entryView, 0, len(list))
	for _, e := range list {
		rows = append(rows, a.entryView(e))
	}
	return printJSON(a.out, rows)
}

func (a *app) cmdLatest(ctx context.Context, s *service.Session, _ []string) error {
	if _, err := s.Entries.Load(ctx); err != nil {
		return err
	}
	e, ok := s.Entries.Latest()
	if !ok {
		return printJSON(a.out, nil)
	}
	return printJSON(a.out, a.entryView(e))
}

// entryFlags registers the fields shared by add and edit.
type entryFlags struct {
	fs      *flag.FlagSet
	bed     *string
	wake    *string
	note    *string
	quality *int
}

func newEntryFlags(name string) *entryFlags {
	fs := newFlagSet(name)
	return &entryFlags{
		fs:      fs,
		bed:     fs.String("bed", "", "bedtime"),
		wake:    fs.String("wake", "", "wake time"),
		note:    fs.String("note", "", "note (max 200 characters)"),
		quality: fs.Int("quality", 0, "quality rating 1..5"),
	}
}

func (f *entryFlags) input(loc *time.Location) (model.EntryInput, error) {
	var in model.EntryInput
	if *f.bed == "" || *f.wake == "" {
		return in, usageErr("%s: need -bed and -wake", f.fs.Name())
	}
	var err error
	if in.Bedtime, err = parseInstant(*f.bed, loc); err != nil {
		return in, err
	}
	if in.WakeTime, err = parseInstant(*f.wake, loc); err != nil {
		return in, err
	}
	set := visited(f.fs)
	if set["note"] {
		in.Note = f.note
	}
	if set["quality"] {
		in.Quality = f.quality
	}
	return in, in.Validate()
}

func (a *app) cmdAdd(ctx context.Context, s *service.Session, args []string) error {
	f := newEntryFlags("add")
	if err := parseFlags(f.fs, args); err != nil {
		return err
	}
	in, err := f.input(a.loc)
	if err != nil {
		return err
	}
	e, err := s.Entries.Add(ctx, in)
	if err != nil {
		return err
	}
	return printJSON(a.out, a.entryView(e))
}

func (a *app) cmdEdit(ctx context.Context, s *service.Session, args []string) error {
	f := newEntryFlags("edit")
	id := f.fs.String("id", "", "entry id")
	if err := parseFlags(f.fs, args); err != nil {
		return err
	}
	uid, err := uuid.FromString(*id)
	if err != nil {
		return usageErr("edit: -id: %v", err)
	}
	in, err := f.input(a.loc)
	if err != nil {
		return err
	}
	if _, err := s.Entries.Load(ctx); err != nil {
		return err
	}
	e, err := s.Entries.Update(ctx, uid, in)
	if err != nil {
		return err
	}
	return printJSON(a.out, a.entryView(e))
}

func (a *app) cmdRm(ctx context.Context, s *service.Session, args []string) error {
	fs := newFlagSet("rm")
	id := fs.String("id", "", "entry id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	uid, err := uuid.FromString(*id)
	if err != nil {
		return usageErr("rm: -id: %v", err)
	}
	if err := s.Entries.Delete(ctx, uid); err != nil {
		return err
	}
	return printJSON(a.out, map[string]string{"deleted": uid.String()})
}

func (a *app) cmdClear(ctx context.Context, s *service.Session, args []string) error {
	fs := newFlagSet("clear")
	yes := fs.Bool("yes", false, "confirm deleting every entry")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if !*yes {
		return usageErr("clear: deletes every entry irreversibly, pass -yes")
	}
	if err := s.Entries.ClearAll(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, "ok")
	return err
}

type dayView struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Hours float64 `json:"hours"`
	Slept string  `json:"slept"`
}

type statsView struct {
	Days         []dayView `json:"days"`
	Average      float64   `json:"average"`
	AverageText  string    `json:"averageText"`
	TargetHours  float64   `json:"targetHours,omitempty"`
	TotalEntries int       `json:"totalEntries"`
}

func (a *app) cmdStats(ctx context.Context, s *service.Session, _ []string) error {
	if _, err := s.Entries.Load(ctx); err != nil {
		return err
	}
	st := s.Entries.WeeklyStats()
	v := statsView{
		Days:         make([]dayView, 0, len(st.Days)),
		Average:      st.Average,
		AverageText:  timeutil.FormatDuration(st.Average),
		TotalEntries: st.TotalEntries,
	}
	for i := range st.Days {
		v.Days = append(v.Days, dayView{
			Date:  timeutil.FormatDate(st.Days[i], a.loc),
			Label: st.Labels[i],
			Hours: st.Hours[i],
			Slept: timeutil.FormatDuration(st.Hours[i]),
		})
	}
	if s.Identity.Authenticated() {
		if cur, err := s.Settings.Load(ctx); err == nil {
			v.TargetHours = cur.TargetHours
		}
	}
	return printJSON(a.out, v)
}

func (a *app) cmdSettings(ctx context.Context, s *service.Session, _ []string) error {
	cur, err := s.Settings.Load(ctx)
	if err != nil {
		return err
	}
	return printJSON(a.out, cur)
}

type updateView struct {
	Settings model.UserSettings `json:"settings"`
	Reminder struct {
		Action  string     `json:"action"`
		ID      string     `json:"id,omitempty"`
		NextAt  *time.Time `json:"nextAt,omitempty"`
		Message string     `json:"message,omitempty"`
		Error   string     `json:"error,omitempty"`
	} `json:"reminder"`
}

func (a *app) printUpdate(res service.UpdateResult) error {
	var v updateView
	v.Settings = res.Settings
	v.Reminder.Action = res.Reminder.Action
	v.Reminder.ID = res.Reminder.ID
	if !res.Reminder.OK() {
		v.Reminder.Error = res.Reminder.Err.Error()
	}
	if a.notifier != nil {
		for _, r := range a.notifier.Active() {
			if r.ID == res.Reminder.ID {
				next := r.NextAt
				v.Reminder.NextAt = &next
				v.Reminder.Message = r.Message
			}
		}
	}
	return printJSON(a.out, v)
}

func (a *app) cmdSet(ctx context.Context, s *service.Session, args []string) error {
	fs := newFlagSet("set")
	target := fs.Float64("target", model.DefaultTargetHours, "nightly sleep goal in hours")
	reminder := fs.String("reminder", "", "on|off")
	at := fs.String("at", "", "reminder time HH:MM")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	var patch model.SettingsPatch
	set := visited(fs)
	if set["target"] {
		patch.TargetHours = target
	}
	if set["reminder"] {
		on, err := parseOnOff(*reminder)
		if err != nil {
			return usageErr("set: -reminder: %v", err)
		}
		patch.ReminderEnabled = &on
	}
	if set["at"] {
		c, err := model.ParseClock(*at)
		if err != nil {
			return usageErr("set: -at: %v", err)
		}
		patch.ReminderTime = &c
	}
	if patch.Empty() {
		return usageErr("set: nothing to change")
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	res, err := s.Settings.Update(ctx, patch)
	if err != nil {
		return err
	}
	return a.printUpdate(res)
}

func (a *app) cmdOnboard(ctx context.Context, s *service.Session, args []string) error {
	fs := newFlagSet("onboard")
	target := fs.Float64("target", model.DefaultTargetHours, "nightly sleep goal in hours")
	reminder := fs.String("reminder", "off", "on|off")
	at := fs.String("at", "", "reminder time HH:MM (default: keep the current one)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	on, err := parseOnOff(*reminder)
	if err != nil {
		return usageErr("onboard: -reminder: %v", err)
	}

	cur, err := s.Settings.Load(ctx)
	if err != nil {
		return err
	}
	set := visited(fs)
	if !set["target"] {
		*target = cur.TargetHours
	}
	c := cur.ReminderTime
	if set["at"] {
		if c, err = model.ParseClock(*at); err != nil {
			return usageErr("onboard: -at: %v", err)
		}
	}
	patch := model.SettingsPatch{TargetHours: target, ReminderTime: &c}
	if err := patch.Validate(); err != nil {
		return err
	}

	res, err := s.Settings.CompleteOnboarding(ctx, *target, on, c)
	if err != nil {
		return err
	}
	return a.printUpdate(res)
}
