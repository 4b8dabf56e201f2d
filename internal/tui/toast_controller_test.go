package tui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/newsdesk/internal/core/notify"
)

func TestToastController_Push(t *testing.T) {
	c := NewToastController(0)

	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "hello"})

	assert.True(t, c.HasToasts())
	assert.Len(t, c.Toasts(), 1)
	assert.Equal(t, "hello", c.Toasts()[0].notification.Message)
	assert.Equal(t, defaultToastTTL, c.Toasts()[0].remaining)
}

func TestToastController_CustomTTL(t *testing.T) {
	c := NewToastController(2 * time.Second)

	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "short"})

	assert.Equal(t, 2*time.Second, c.Toasts()[0].remaining)
}

func TestToastController_Push_evicts_oldest_at_max(t *testing.T) {
	c := NewToastController(0)

	for i := range defaultMaxToasts + 2 {
		c.Push(notify.Notification{
			Level:   notify.LevelInfo,
			Message: time.Duration(i).String(),
		})
	}

	assert.Len(t, c.Toasts(), defaultMaxToasts)
	assert.Equal(t, "2ns", c.Toasts()[0].notification.Message)
}

func TestToastController_Push_coalesces_repeats(t *testing.T) {
	c := NewToastController(time.Second)
	c.Push(notify.Notification{Level: notify.LevelError, Message: "could not refresh stories"})
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "comment posted"})
	c.Tick(400 * time.Millisecond)

	c.Push(notify.Notification{Level: notify.LevelError, Message: "could not refresh stories"})

	toasts := c.Toasts()
	assert.Len(t, toasts, 2)
	assert.Equal(t, "comment posted", toasts[0].notification.Message)
	assert.Equal(t, "could not refresh stories", toasts[1].notification.Message)
	assert.Equal(t, 1, toasts[1].repeats)
	assert.Equal(t, time.Second, toasts[1].remaining)

	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "could not refresh stories"})
	assert.Len(t, c.Toasts(), 3, "different level is a different toast")
}

func TestToastController_Tick_removes_expired(t *testing.T) {
	c := NewToastController(0)
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "expires"})
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "survives"})

	c.toasts[0].remaining = 50 * time.Millisecond
	c.Tick(100 * time.Millisecond)

	assert.Len(t, c.Toasts(), 1)
	assert.Equal(t, "survives", c.Toasts()[0].notification.Message)
	assert.Equal(t, defaultToastTTL-100*time.Millisecond, c.Toasts()[0].remaining)
}

func TestToastController_Dismiss(t *testing.T) {
	c := NewToastController(0)
	c.Dismiss() // empty is a no-op

	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "first"})
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "second"})
	c.Dismiss()

	assert.Len(t, c.Toasts(), 1)
	assert.Equal(t, "first", c.Toasts()[0].notification.Message)
}

func TestToastView_Render(t *testing.T) {
	c := NewToastController(0)
	v := NewToastView(c)

	assert.Empty(t, v.View())
	assert.Equal(t, "background", v.Attach("background", 80))

	c.Push(notify.Notification{Level: notify.LevelError, Message: "could not delete comment"})
	out := v.Attach("background", 80)

	assert.Contains(t, out, "background")
	assert.Contains(t, out, "could not delete comment")

	c.Push(notify.Notification{Level: notify.LevelError, Message: "could not delete comment"})
	assert.Contains(t, v.View(), "(x2)")
}
