// Package scheduler runs periodic background jobs. Its only job today is the
// connectivity probe that drives online/offline transitions of the settings
// sync.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const probeTimeout = 5 * time.Second

// Prober returns nil when the cloud is reachable.
type Prober func(ctx context.Context) error

// ConnectivityMonitor probes reachability on a cron schedule and notifies
// subscribers whenever the online state flips.
type ConnectivityMonitor struct {
	probe    Prober
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	online     bool
	listeners  map[int]func(online bool)
	nextID     int
	cancelFunc context.CancelFunc
}

// NewConnectivityMonitor creates a monitor that starts in the given state.
func NewConnectivityMonitor(probe Prober, schedule string, online bool) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		probe:     probe,
		schedule:  schedule,
		online:    online,
		listeners: make(map[int]func(bool)),
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		))),
	}
}

// Start schedules the probe and runs it once immediately. A monitor without
// a prober never leaves its initial state.
func (m *ConnectivityMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return nil
	}
	if m.probe == nil {
		log.Printf("Connectivity monitor: no probe configured, staying %s", stateName(m.online))
		return nil
	}

	var cancelCtx context.Context
	cancelCtx, m.cancelFunc = context.WithCancel(ctx)

	entryID, err := m.cron.AddFunc(m.schedule, func() {
		m.Check(cancelCtx)
	})
	if err != nil {
		m.cancelFunc()
		return fmt.Errorf("invalid connectivity schedule '%s': %w", m.schedule, err)
	}
	m.entryID = entryID

	m.cron.Start()
	m.isRunning = true
	log.Printf("Connectivity monitor: started with schedule '%s'", m.schedule)

	go m.Check(cancelCtx)
	go func() {
		<-cancelCtx.Done()
		m.Stop()
	}()

	return nil
}

// Stop halts the schedule and waits for a running probe to finish.
func (m *ConnectivityMonitor) Stop() {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = false
	cancel := m.cancelFunc
	m.cancelFunc = nil
	m.cron.Remove(m.entryID)
	m.mu.Unlock()

	cancel()
	<-m.cron.Stop().Done()
	log.Printf("Connectivity monitor: stopped")
}

// Check runs the probe now and returns the resulting state.
func (m *ConnectivityMonitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := m.probe(probeCtx)
	if err != nil && ctx.Err() != nil {
		// Shutting down; not a connectivity change.
		return m.Online()
	}
	if err != nil {
		log.Printf("Connectivity monitor: probe failed: %v", err)
	}
	m.SetOnline(err == nil)
	return err == nil
}

// SetOnline records the state and notifies subscribers on a change.
func (m *ConnectivityMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	log.Printf("Connectivity monitor: now %s", stateName(online))
	for _, fn := range listeners {
		fn(online)
	}
}

// Online returns the last known state.
func (m *ConnectivityMonitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (m *ConnectivityMonitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// IsRunning returns whether the schedule is active
func (m *ConnectivityMonitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}

// NextRunTime returns when the next probe will run
func (m *ConnectivityMonitor) NextRunTime() *time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.isRunning {
		return nil
	}
	entry := m.cron.Entry(m.entryID)
	if entry.ID == 0 {
		return nil
	}
	t := entry.Next
	return &t
}

func stateName(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
