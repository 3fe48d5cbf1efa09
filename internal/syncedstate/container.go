package syncedstate

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/chumash/internal/cloud"
)

type Status string

const (
	StatusSynced  Status = "synced"
	StatusSyncing Status = "syncing"
	StatusOffline Status = "offline"
	StatusError   Status = "error"
)

const (
	DefaultDebounce = time.Second

	writeTimeout = 30 * time.Second
)

// Snapshot is the observable state of a container.
type Snapshot[T any] struct {
	Data       T      `json:"data"`
	Status     Status `json:"status"`
	LastSynced int64  `json:"last_synced"` // epoch milliseconds, 0 when never synced
}

// LocalStore is the synchronous device-local key/value store.
type LocalStore interface {
	GetRaw(key string) (string, bool, error)
	SetRaw(key, value string) error
}

type Options[T any] struct {
	LocalKey    string
	Table       string
	Column      string
	UserID      string
	SyncEnabled bool
	Default     T
	Debounce    time.Duration

	Local  LocalStore
	Remote cloud.Backend
	Online bool

	Now func() time.Time
}

// Container owns one synchronized value.
type Container[T any] struct {
	opts Options[T]

	mu        sync.Mutex
	state     Snapshot[T]
	userID    string
	online    bool
	queued    bool // current data still has to reach the cloud
	timer     *time.Timer
	timerGen  uint64
	mountGen  uint64
	writeSeq  uint64 // last issued cloud write
	doneSeq   uint64 // newest cloud write that has completed
	closed    bool
	baseCtx   context.Context
	listeners map[int]func(Snapshot[T])
	nextID    int
	writes    sync.WaitGroup
}

// New builds a container from the local store. It never fails: unreadable
// local data falls back to opts.Default.
func New[T any](opts Options[T]) *Container[T] {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Container[T]{
		opts:      opts,
		userID:    opts.UserID,
		online:    opts.Online,
		baseCtx:   context.Background(),
		listeners: make(map[int]func(Snapshot[T])),
	}
	c.state = Snapshot[T]{Data: c.readLocal(), Status: StatusSynced}
	if !c.online {
		c.state.Status = StatusOffline
	}
	return c
}

func (c *Container[T]) readLocal() T {
	if c.opts.Local == nil || c.opts.LocalKey == "" {
		return c.opts.Default
	}
	raw, ok, err := c.opts.Local.GetRaw(c.opts.LocalKey)
	if err != nil {
		log.Printf("[Sync] Error loading %s from local store: %v", c.opts.LocalKey, err)
		return c.opts.Default
	}
	if !ok {
		return c.opts.Default
	}
	v, err := decodeLocal(c.opts.Default, raw)
	if err != nil {
		if !errors.Is(err, errNull) {
			log.Printf("[Sync] Ignoring unreadable local value for %s: %v", c.opts.LocalKey, err)
		}
		return c.opts.Default
	}
	return v
}

func (c *Container[T]) writeLocal(v T) error {
	if c.opts.Local == nil || c.opts.LocalKey == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.opts.Local.SetRaw(c.opts.LocalKey, string(data))
}

// canSync must be called with mu held.
func (c *Container[T]) canSync() bool {
	return c.opts.SyncEnabled && c.userID != "" && c.opts.Remote != nil &&
		c.opts.Table != "" && c.opts.Column != ""
}

// Start loads the cloud value for the current user in the background. The
// returned channel is closed when that read has finished or was skipped.
func (c *Container[T]) Start(ctx context.Context) <-chan struct{} {
	c.mu.Lock()
	c.baseCtx = ctx
	done := c.mountLocked()
	c.mu.Unlock()
	return done
}

// mountLocked must be called with mu held.
func (c *Container[T]) mountLocked() <-chan struct{} {
	done := make(chan struct{})
	if !c.canSync() || c.closed {
		close(done)
		return done
	}

	c.mountGen++
	gen := c.mountGen
	userID := c.userID
	ctx := c.baseCtx

	go func() {
		defer close(done)
		c.mount(ctx, gen, userID)
	}()
	return done
}

func (c *Container[T]) mount(ctx context.Context, gen uint64, userID string) {
	raw, err := c.opts.Remote.ReadColumn(ctx, c.opts.Table, c.opts.Column, userID)
	if errors.Is(err, cloud.ErrNoRow) {
		return
	}
	if err != nil {
		log.Printf("[Sync] Failed to load %s.%s from cloud: %v", c.opts.Table, c.opts.Column, err)
		return
	}
	if len(raw) == 0 {
		return
	}

	v, err := decode(c.opts.Default, raw)
	if err != nil {
		if !errors.Is(err, errNull) {
			log.Printf("[Sync] Ignoring unreadable cloud value for %s.%s: %v", c.opts.Table, c.opts.Column, err)
		}
		return
	}

	c.mutate(func() bool {
		if gen != c.mountGen || c.closed {
			return false
		}
		c.state = Snapshot[T]{Data: v, Status: StatusSynced, LastSynced: c.opts.Now().UnixMilli()}
		if !c.online {
			c.state.Status = StatusOffline
		}
		if err := c.writeLocal(v); err != nil {
			log.Printf("[Sync] Failed to store cloud value for %s locally: %v", c.opts.LocalKey, err)
		}
		return true
	})
}

// SetData replaces the value. The local store is written before SetData
// returns; the returned error is that write's error.
func (c *Container[T]) SetData(v T) error {
	return c.Update(func(T) T { return v })
}

// Update computes the next value from the current one, like SetData.
func (c *Container[T]) Update(fn func(prev T) T) error {
	var localErr error
	c.mutate(func() bool {
		next := fn(c.state.Data)
		if localErr = c.writeLocal(next); localErr != nil {
			log.Printf("[Sync] Failed to write %s locally: %v", c.opts.LocalKey, localErr)
			return false
		}
		c.state.Data = next

		if c.closed || !c.canSync() {
			return true
		}
		c.queued = true
		if c.online {
			c.scheduleLocked()
		}
		return true
	})
	return localErr
}

// scheduleLocked restarts the debounce timer. Must be called with mu held.
func (c *Container[T]) scheduleLocked() {
	c.stopTimerLocked()
	gen := c.timerGen
	c.timer = time.AfterFunc(c.opts.Debounce, func() {
		c.debounceFired(gen)
	})
}

func (c *Container[T]) stopTimerLocked() {
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Container[T]) debounceFired(gen uint64) {
	c.mutate(func() bool {
		if gen != c.timerGen || c.closed {
			return false
		}
		c.timer = nil
		if !c.online || !c.canSync() {
			return false
		}
		_ = c.startWriteLocked()
		return true
	})
}

// startWriteLocked sends the current data to the cloud in the background.
// The returned channel is closed once the write has been recorded. Must be
// called with mu held.
func (c *Container[T]) startWriteLocked() <-chan struct{} {
	done := make(chan struct{})
	data, err := json.Marshal(c.state.Data)
	if err != nil {
		log.Printf("[Sync] Failed to encode %s.%s: %v", c.opts.Table, c.opts.Column, err)
		c.state.Status = StatusError
		close(done)
		return done
	}

	c.writeSeq++
	seq := c.writeSeq
	userID := c.userID
	c.queued = false
	c.state.Status = StatusSyncing

	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		err := c.opts.Remote.WriteColumn(ctx, c.opts.Table, c.opts.Column, userID, data)
		c.finishWrite(seq, err)
	}()
	return done
}

func (c *Container[T]) finishWrite(seq uint64, err error) {
	c.mutate(func() bool {
		// A newer write already completed; this result is stale.
		if seq < c.doneSeq {
			return false
		}
		c.doneSeq = seq

		if err != nil {
			log.Printf("[Sync] Cloud sync error for %s.%s: %v", c.opts.Table, c.opts.Column, err)
			c.state.Status = StatusError
			c.queued = true
			return true
		}

		c.state.LastSynced = c.opts.Now().UnixMilli()
		switch {
		case !c.online:
			c.state.Status = StatusOffline
		case seq < c.writeSeq:
			c.state.Status = StatusSyncing
		default:
			c.state.Status = StatusSynced
		}
		return true
	})
}

// SetOnline reports a connectivity change. Going offline cancels a pending
// debounced write and keeps the value queued; coming online flushes the
// queued value immediately.
func (c *Container[T]) SetOnline(online bool) {
	c.mutate(func() bool {
		if c.closed {
			return false
		}
		c.online = online
		if !online {
			c.stopTimerLocked()
			c.state.Status = StatusOffline
			return true
		}

		c.state.Status = StatusSynced
		if c.queued && c.canSync() {
			c.stopTimerLocked()
			_ = c.startWriteLocked()
		}
		return true
	})
}

// SyncNow writes the current value to the cloud immediately and waits for
// the write to finish. It does nothing when sync is disabled or no user is
// signed in. The outcome is reported through State.
func (c *Container[T]) SyncNow(ctx context.Context) {
	var done <-chan struct{}
	c.mutate(func() bool {
		if c.closed || !c.canSync() {
			return false
		}
		c.stopTimerLocked()
		done = c.startWriteLocked()
		return true
	})
	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// SetUser rebinds the container to another user (login, logout or account
// switch). Pending writes for the previous user are dropped and the cloud
// value of the new user is loaded in the background.
func (c *Container[T]) SetUser(userID string) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if userID == c.userID {
		done := make(chan struct{})
		close(done)
		return done
	}
	c.userID = userID
	c.stopTimerLocked()
	c.queued = false
	c.mountGen++
	return c.mountLocked()
}

// State returns the current snapshot.
func (c *Container[T]) State() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Data returns the current value.
func (c *Container[T]) Data() T {
	return c.State().Data
}

// UserID returns the user the container is bound to.
func (c *Container[T]) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Subscribe registers fn for every state change and returns a function that
// removes it. fn must not call back into the container synchronously.
func (c *Container[T]) Subscribe(fn func(Snapshot[T])) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Close stops the debounce timer, dropping a write that has not fired yet,
// and waits for writes already in flight.
func (c *Container[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()

	c.writes.Wait()
}

// mutate runs fn under the lock and notifies subscribers when fn reports a
// change.
func (c *Container[T]) mutate(fn func() bool) {
	c.mu.Lock()
	if !fn() {
		c.mu.Unlock()
		return
	}
	snap := c.state
	listeners := make([]func(Snapshot[T]), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}
