package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlatform() *TimerPlatform {
	return NewTimerPlatform(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTimerPlatform_ScheduleAndDeliver(t *testing.T) {
	platform := newTestPlatform()

	delivered := make(chan string, 1)
	platform.OnDeliver(func(id, title, body string) { delivered <- id })

	err := platform.Schedule(context.Background(), "n1", "Essay due", "Finish the draft", time.Now().Add(20*time.Millisecond))
	require.NoError(t, err)

	select {
	case id := <-delivered:
		assert.Equal(t, "n1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("notification never delivered")
	}
	assert.Empty(t, platform.Scheduled())
}

func TestTimerPlatform_CancelStopsDelivery(t *testing.T) {
	platform := newTestPlatform()

	delivered := make(chan string, 1)
	platform.OnDeliver(func(id, title, body string) { delivered <- id })

	ctx := context.Background()
	require.NoError(t, platform.Schedule(ctx, "n1", "t", "b", time.Now().Add(50*time.Millisecond)))
	require.NoError(t, platform.Cancel(ctx, "n1"))

	select {
	case <-delivered:
		t.Fatal("cancelled notification was delivered")
	case <-time.After(150 * time.Millisecond):
	}
	assert.Empty(t, platform.Scheduled())
}

func TestTimerPlatform_ScheduleSameIDReplaces(t *testing.T) {
	platform := newTestPlatform()

	ctx := context.Background()
	require.NoError(t, platform.Schedule(ctx, "n1", "t", "b", time.Now().Add(time.Hour)))
	require.NoError(t, platform.Schedule(ctx, "n1", "t", "b", time.Now().Add(time.Hour)))

	assert.Len(t, platform.Scheduled(), 1)
}

func TestTimerPlatform_PressFansOut(t *testing.T) {
	platform := newTestPlatform()

	var got []string
	unsubscribe := platform.OnPress(func(id string) { got = append(got, id) })

	platform.Press("x")
	unsubscribe()
	platform.Press("y")

	assert.Equal(t, []string{"x"}, got)
}

func TestTimerPlatform_CancelUnknownID(t *testing.T) {
	platform := newTestPlatform()

	assert.NoError(t, platform.Cancel(context.Background(), "missing"))
}
