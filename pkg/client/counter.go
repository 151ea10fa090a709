package client

import (
	"context"
	"sync"
)

// countFetcher supplies the authoritative unread count. *API implements it.
type countFetcher interface {
	UnreadCount(ctx context.Context) (int64, error)
}

// UnreadCounter is the single-owner cache of the unread notification count.
// All mutation goes through its methods; subscribers only ever observe
// values. Optimistic increments/decrements are reconciled by Refresh, which
// always wins.
type UnreadCounter struct {
	fetcher countFetcher

	mu      sync.Mutex
	value   int64
	subs    map[int]chan int64
	nextSub int
}

func NewUnreadCounter(fetcher countFetcher) *UnreadCounter {
	return &UnreadCounter{
		fetcher: fetcher,
		subs:    make(map[int]chan int64),
	}
}

// Value returns the current cached count.
func (c *UnreadCounter) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Refresh replaces the cached value with the server's authoritative count.
// Call it on startup, on reconnection and periodically as a safety net.
func (c *UnreadCounter) Refresh(ctx context.Context) error {
	count, err := c.fetcher.UnreadCount(ctx)
	if err != nil {
		return err
	}
	c.set(count)
	return nil
}

// Increment applies an optimistic +1 for a freshly pushed notification.
func (c *UnreadCounter) Increment() {
	c.mu.Lock()
	c.value++
	c.publishLocked()
	c.mu.Unlock()
}

// Decrement applies an optimistic -1 when a notification is marked read.
// The counter never goes below zero.
func (c *UnreadCounter) Decrement() {
	c.mu.Lock()
	if c.value > 0 {
		c.value--
		c.publishLocked()
	}
	c.mu.Unlock()
}

// Reset zeroes the counter, used after mark-all-read.
func (c *UnreadCounter) Reset() {
	c.set(0)
}

// Subscribe returns a channel that immediately receives the current value
// and then every change. Slow subscribers only ever see the latest value.
// The returned func cancels the subscription.
func (c *UnreadCounter) Subscribe() (<-chan int64, func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan int64, 1)
	ch <- c.value
	c.subs[id] = ch
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *UnreadCounter) set(v int64) {
	c.mu.Lock()
	if c.value != v {
		c.value = v
		c.publishLocked()
	}
	c.mu.Unlock()
}

// publishLocked pushes the current value to every subscriber, replacing a
// pending unread value so nobody blocks.
func (c *UnreadCounter) publishLocked() {
	for _, ch := range c.subs {
		select {
		case ch <- c.value:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- c.value
		}
	}
}
