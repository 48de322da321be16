package controller

import "time"

// DefaultToastLifetime is how long a toast stays visible when no lifetime is configured.
const DefaultToastLifetime = 3 * time.Second

// ToastKind is the tone of a toast.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
)

func (k ToastKind) String() string {
	if k == ToastError {
		return "error"
	}
	return "success"
}

// Toast is a transient notification. Gen identifies it for expiry.
type Toast struct {
	Message   string
	Kind      ToastKind
	Gen       uint64
	ExpiresAt time.Time
}

// toaster is a single-slot toast holder.
//
// A new toast replaces the visible one and restarts the lifetime. Expiry carries the generation it was scheduled
// for, so a timer started for an older toast never clears a newer one.
type toaster struct {
	lifetime time.Duration
	now      func() time.Time
	gen      uint64
	current  *Toast
}

func newToaster(lifetime time.Duration, now func() time.Time) *toaster {
	if lifetime <= 0 {
		lifetime = DefaultToastLifetime
	}
	if now == nil {
		now = time.Now
	}
	return &toaster{lifetime: lifetime, now: now}
}

func (t *toaster) show(msg string, kind ToastKind) Toast {
	t.gen++
	t.current = &Toast{Message: msg, Kind: kind, Gen: t.gen, ExpiresAt: t.now().Add(t.lifetime)}
	return *t.current
}

// visible returns the current toast while its lifetime has not elapsed.
func (t *toaster) visible() (Toast, bool) {
	if t.current == nil || !t.now().Before(t.current.ExpiresAt) {
		return Toast{}, false
	}
	return *t.current, true
}

// expire clears the slot only when gen is the current toast's generation.
func (t *toaster) expire(gen uint64) bool {
	if t.current == nil || t.current.Gen != gen {
		return false
	}
	t.current = nil
	return true
}
