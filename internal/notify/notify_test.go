package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/sleep-keeper/internal/model"
)

func TestMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Time to wind down. Aim for 8h of sleep tonight.", Message(8))
	require.Equal(t, "Time to wind down. Aim for 7h 30m of sleep tonight.", Message(7.5))
}

func TestLogNotifier_ScheduleReplacesAndCancel(t *testing.T) {
	t.Parallel()

	loc := time.UTC
	n := NewLogNotifier(zaptest.NewLogger(t), loc)
	n.SetClock(func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, loc) })
	n.SetClock(nil)
	ctx := context.Background()

	id1, err := n.Schedule(ctx, model.Clock{Hour: 22}, 8)
	require.NoError(t, err)
	require.NotEmpty(t, id1)

	id2, err := n.Schedule(ctx, model.Clock{Hour: 7}, 7.5)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	active := n.Active()
	require.Len(t, active, 1)
	require.Equal(t, id2, active[0].ID)
	require.Equal(t, time.Date(2026, 10, 20, 7, 0, 0, 0, loc), active[0].NextAt)
	require.Contains(t, active[0].Message, "7h 30m")

	require.NoError(t, n.CancelAll(ctx))
	require.Empty(t, n.Active())
}

func TestLogNotifier_Errors(t *testing.T) {
	t.Parallel()

	n := NewLogNotifier(nil, nil)

	_, err := n.Schedule(context.Background(), model.Clock{Hour: 25}, 8)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = n.Schedule(ctx, model.Clock{Hour: 22}, 8)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, n.CancelAll(ctx), context.Canceled)
}

func TestNop(t *testing.T) {
	t.Parallel()

	var n Notifier = Nop{}
	id, err := n.Schedule(context.Background(), model.Clock{}, 8)
	require.NoError(t, err)
	require.Empty(t, id)
	require.NoError(t, n.CancelAll(context.Background()))
}
