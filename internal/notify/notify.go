// Package notify defines the reminder notification collaborator.
package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/sleep-keeper/internal/model"
	"github.com/and161185/sleep-keeper/internal/timeutil"
)

// Notifier schedules the daily bedtime reminder. Delivery is the
// implementation's concern; the core supplies only time of day and goal.
type Notifier interface {
	// Schedule registers a daily reminder at the given wall-clock time and returns its id.
	Schedule(ctx context.Context, at model.Clock, targetHours float64) (string, error)
	// CancelAll removes every scheduled reminder.
	CancelAll(ctx context.Context) error
}

// Message is the reminder copy for a sleep goal.
func Message(targetHours float64) string {
	return fmt.Sprintf("Time to wind down. Aim for %s of sleep tonight.", timeutil.FormatDuration(targetHours))
}

// Reminder is a scheduled notification as tracked by LogNotifier.
type Reminder struct {
	ID      string      `json:"id"`
	At      model.Clock `json:"at"`
	NextAt  time.Time   `json:"nextAt"`
	Message string      `json:"message"`
}

// LogNotifier keeps reminders in memory and logs every change. It stands in
// for an OS notification service on hosts that have none: nothing is
// delivered, and reminders live only as long as the process. Active exposes
// what would have been scheduled.
type LogNotifier struct {
	log *zap.Logger
	loc *time.Location
	now func() time.Time

	mu        sync.Mutex
	reminders map[string]Reminder
}

// NewLogNotifier constructs a LogNotifier; a nil loc means time.Local.
func NewLogNotifier(log *zap.Logger, loc *time.Location) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &LogNotifier{log: log, loc: loc, now: time.Now, reminders: map[string]Reminder{}}
}

// SetClock replaces time.Now; nil is ignored.
func (n *LogNotifier) SetClock(now func() time.Time) {
	if now != nil {
		n.now = now
	}
}

// Schedule replaces any existing reminder with one at the given time.
func (n *LogNotifier) Schedule(ctx context.Context, at model.Clock, targetHours float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !at.Valid() {
		return "", fmt.Errorf("notify: invalid time %s", at)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	r := Reminder{
		ID:      id.String(),
		At:      at,
		NextAt:  at.Next(n.now(), n.loc),
		Message: Message(targetHours),
	}

	n.mu.Lock()
	clear(n.reminders)
	n.reminders[r.ID] = r
	n.mu.Unlock()

	n.log.Info("reminder scheduled",
		zap.String("id", r.ID),
		zap.Stringer("at", at),
		zap.Time("next", r.NextAt),
	)
	return r.ID, nil
}

// CancelAll drops every reminder.
func (n *LogNotifier) CancelAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.mu.Lock()
	cnt := len(n.reminders)
	clear(n.reminders)
	n.mu.Unlock()

	n.log.Info("reminders cancelled", zap.Int("count", cnt))
	return nil
}

// Active lists the scheduled reminders ordered by next fire time.
func (n *LogNotifier) Active() []Reminder {
	n.mu.Lock()
	out := make([]Reminder, 0, len(n.reminders))
	for _, r := range n.reminders {
		out = append(out, r)
	}
	n.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].NextAt.Before(out[j].NextAt) })
	return out
}

// Nop discards reminders.
type Nop struct{}

func (Nop) Schedule(context.Context, model.Clock, float64) (string, error) { return "", nil }
func (Nop) CancelAll(context.Context) error                                 { return nil }
