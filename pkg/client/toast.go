package client

import (
	"sync"
	"time"
)

// DefaultToastDuration is how long a toast stays visible when the caller
// does not specify a duration.
const DefaultToastDuration = 5000 * time.Millisecond

// Toast is an ephemeral user-facing alert, distinct from the persisted
// notification it may have been derived from.
type Toast struct {
	ID       int64
	Title    string
	Message  string
	Severity Severity
	Duration time.Duration
}

// ToastQueue holds the active toasts, oldest first. Every toast expires on
// its own timer; dismissing one never disturbs the others.
type ToastQueue struct {
	mu      sync.Mutex
	nextID  int64
	toasts  []Toast
	timers  map[int64]*time.Timer
	subs    map[int]chan []Toast
	nextSub int
}

func NewToastQueue() *ToastQueue {
	return &ToastQueue{
		timers: make(map[int64]*time.Timer),
		subs:   make(map[int]chan []Toast),
	}
}

// Show enqueues a toast and schedules its removal after duration.
// A non-positive duration falls back to DefaultToastDuration.
// It returns the assigned id.
func (q *ToastQueue) Show(title, message string, severity Severity, duration time.Duration) int64 {
	if duration <= 0 {
		duration = DefaultToastDuration
	}

	q.mu.Lock()
	id := q.nextID
	q.nextID++
	q.toasts = append(q.toasts, Toast{
		ID:       id,
		Title:    title,
		Message:  message,
		Severity: severity,
		Duration: duration,
	})
	q.timers[id] = time.AfterFunc(duration, func() { q.Dismiss(id) })
	q.publishLocked()
	q.mu.Unlock()

	return id
}

// Dismiss removes a toast immediately. Dismissing an unknown id is a no-op.
func (q *ToastQueue) Dismiss(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}

	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			q.publishLocked()
			return
		}
	}
}

// Active returns a snapshot of the visible toasts, oldest first.
func (q *ToastQueue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

// Subscribe returns a channel receiving the current snapshot immediately and
// a new one after every change. The returned func cancels the subscription.
func (q *ToastQueue) Subscribe() (<-chan []Toast, func()) {
	q.mu.Lock()
	id := q.nextSub
	q.nextSub++
	ch := make(chan []Toast, 1)
	snapshot := make([]Toast, len(q.toasts))
	copy(snapshot, q.toasts)
	ch <- snapshot
	q.subs[id] = ch
	q.mu.Unlock()

	cancel := func() {
		q.mu.Lock()
		delete(q.subs, id)
		q.mu.Unlock()
	}
	return ch, cancel
}

func (q *ToastQueue) publishLocked() {
	for _, ch := range q.subs {
		snapshot := make([]Toast, len(q.toasts))
		copy(snapshot, q.toasts)
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
