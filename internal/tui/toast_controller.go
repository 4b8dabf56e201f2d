package tui

import (
	"slices"
	"time"

	"github.com/colonyops/newsdesk/internal/core/notify"
)

const (
	defaultToastTTL   = 5 * time.Second
	defaultMaxToasts  = 5
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 50
)

// toast is one visible notification. repeats counts identical
// notifications folded into it while it was on screen.
type toast struct {
	notification notify.Notification
	remaining    time.Duration
	repeats      int
}

func (t toast) same(n notify.Notification) bool {
	return t.notification.Level == n.Level && t.notification.Message == n.Message
}

// ToastController owns the toast stack: oldest first, at most
// defaultMaxToasts entries, each expiring after the controller's ttl.
type ToastController struct {
	ttl     time.Duration
	toasts  []toast
	ticking bool
}

// NewToastController creates a controller whose toasts live for ttl.
// A non-positive ttl uses defaultToastTTL.
func NewToastController(ttl time.Duration) *ToastController {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	return &ToastController{ttl: ttl}
}

// Push shows n. A notification equal to one already visible (same level
// and message) moves that toast to the bottom, restarts its ttl and bumps
// its repeat count.
func (c *ToastController) Push(n notify.Notification) {
	next := toast{notification: n, remaining: c.ttl}

	if i := slices.IndexFunc(c.toasts, func(t toast) bool { return t.same(n) }); i >= 0 {
		next.repeats = c.toasts[i].repeats + 1
		c.toasts = slices.Delete(c.toasts, i, i+1)
	}

	c.toasts = append(c.toasts, next)
	if over := len(c.toasts) - defaultMaxToasts; over > 0 {
		c.toasts = slices.Delete(c.toasts, 0, over)
	}
}

// Tick advances every toast by d and drops the expired ones.
func (c *ToastController) Tick(d time.Duration) {
	c.toasts = slices.DeleteFunc(c.toasts, func(t toast) bool { return t.remaining <= d })
	for i := range c.toasts {
		c.toasts[i].remaining -= d
	}
}

// Dismiss removes the newest toast.
func (c *ToastController) Dismiss() {
	if n := len(c.toasts); n > 0 {
		c.toasts = c.toasts[:n-1]
	}
}

func (c *ToastController) HasToasts() bool { return len(c.toasts) > 0 }

func (c *ToastController) Toasts() []toast { return c.toasts }

// Ticking reports whether a toastTickMsg is scheduled.
func (c *ToastController) Ticking() bool { return c.ticking }

func (c *ToastController) SetTicking(v bool) { c.ticking = v }
