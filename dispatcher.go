// Copyright 2025 The MIDIFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package midiflux

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// maxConcurrentAsync bounds the number of CommandExecution/Delay/etc
// children the dispatcher will run concurrently (§5 "async tasks").
const maxConcurrentAsync = 16

// rawDispatch is one item on the dispatcher's event queue: an event plus
// the device it arrived from. Source implementations may deliver on
// arbitrary goroutines; this queue is the single hand-off point onto the
// dispatch thread, preserving per-device arrival order.
type rawDispatch struct {
	device string
	event  MidiEvent
}

// releaseEntry is one pending auto-release, ordered by Deadline in the
// Dispatcher's timer min-heap (§9 "Auto-release timers").
type releaseEntry struct {
	deadline time.Time
	key      string
	fn       func()
	index    int
}

type releaseHeap []*releaseEntry

func (h releaseHeap) Len() int            { return len(h) }
func (h releaseHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h releaseHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *releaseHeap) Push(x interface{}) {
	e := x.(*releaseEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *releaseHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Dispatcher is the single-threaded cooperative hot path described in
// §4.8: one logical dispatch thread owns registry publication, state
// writes, and the event loop. Events from a Source may arrive on
// arbitrary goroutines; Dispatcher.OnEvent is the sole hand-off.
type Dispatcher struct {
	registry atomic.Pointer[Registry]
	state    *StateManager
	sinks    *Sinks
	log      *zap.SugaredLogger
	metrics  *Metrics

	evq     chan rawDispatch
	quit    chan struct{}
	done    chan struct{}

	sysexCharset atomic.Pointer[string]

	releaseMu   sync.Mutex
	releases    releaseHeap
	releaseIdx  map[string]*releaseEntry
	releaseTmr  *time.Timer

	asyncGroup *errgroup.Group
	asyncCtx   context.Context
	asyncStop  context.CancelFunc
	sem        *semaphore.Weighted
}

// NewDispatcher constructs a Dispatcher with no active profile (an empty
// Registry) and the given sinks/logger. Call Run in its own goroutine and
// Shutdown to stop it.
func NewDispatcher(state *StateManager, sinks *Sinks, log *zap.SugaredLogger, metrics *Metrics) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	// The release timer exists from the start, stopped, so the channel Run
	// selects on is the same one ScheduleRelease later resets.
	tmr := time.NewTimer(time.Hour)
	tmr.Stop()
	d := &Dispatcher{
		state:      state,
		sinks:      sinks,
		log:        log,
		metrics:    metrics,
		evq:        make(chan rawDispatch, 256),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		releaseIdx: make(map[string]*releaseEntry),
		releaseTmr: tmr,
		asyncGroup: g,
		asyncCtx:   gctx,
		asyncStop:  cancel,
		sem:        semaphore.NewWeighted(maxConcurrentAsync),
	}
	d.registry.Store(NewRegistry(nil))
	return d
}

// SetRegistry atomically publishes a new registry snapshot, per §4.3's
// "no partial updates" invariant. Safe to call from any goroutine; readers
// never block.
func (d *Dispatcher) SetRegistry(r *Registry) {
	d.registry.Store(r)
}

// SetSysExCharset names the registered charset (see RegisterCharset) used
// to decode SysEx payloads for diagnostic logging. Purely cosmetic: it
// never affects matching or dispatch, only what Text() produces.
func (d *Dispatcher) SetSysExCharset(name string) {
	d.sysexCharset.Store(&name)
}

// OnEvent implements SourceListener. It must not block: events are handed
// to a buffered channel and the dispatch goroutine does the real work.
func (d *Dispatcher) OnEvent(sourceDeviceName string, ev MidiEvent) {
	select {
	case d.evq <- rawDispatch{device: sourceDeviceName, event: ev}:
	default:
		d.log.Warnw("event queue full, dropping event", "device", sourceDeviceName)
		if d.metrics != nil {
			d.metrics.eventsDropped.Inc()
		}
	}
}

// OnConnected and OnDisconnected are wired by the profile controller,
// which owns hot-plug device-attachment policy; the dispatcher itself
// only cares about the event stream.
func (d *Dispatcher) OnConnected(DeviceIdentity)    {}
func (d *Dispatcher) OnDisconnected(DeviceIdentity) {}

// Run processes events until Shutdown is called. Intended to be the body
// of the dispatch goroutine.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for {
		select {
		case rd := <-d.evq:
			d.handle(rd)
		case <-d.releaseTimerC():
			d.fireDueReleases()
		case <-d.quit:
			d.drain()
			return
		}
	}
}

// releaseTimerC returns the release timer's channel. NewDispatcher creates
// the timer stopped, so the channel stays quiet while no release is pending.
func (d *Dispatcher) releaseTimerC() <-chan time.Time {
	d.releaseMu.Lock()
	defer d.releaseMu.Unlock()
	if d.releaseTmr == nil {
		return nil
	}
	return d.releaseTmr.C
}

func (d *Dispatcher) drain() {
	for {
		select {
		case rd := <-d.evq:
			d.handle(rd)
		default:
			return
		}
	}
}

func (d *Dispatcher) handle(rd rawDispatch) {
	start := time.Now()
	ev := rd.event
	ev.DeviceName = rd.device
	ev = ev.Normalize()

	reg := d.registry.Load()
	var value *int32
	if ev.HasValue {
		v := ev.Value
		value = &v
	}

	if ev.Kind == SysEx {
		charset := ""
		if p := d.sysexCharset.Load(); p != nil {
			charset = *p
		}
		d.log.Debugw("sysex received", "device", rd.device, "bytes", len(ev.SysExData), "text", ev.Text(charset))
	}

	mappings := reg.Lookup(rd.device, ev.Channel, ev.Kind, ev.Number)
	if len(mappings) == 0 {
		if d.metrics != nil {
			d.metrics.eventsUnmatched.Inc()
		}
		return
	}

	ec := &ExecContext{State: d.state, Sinks: d.sinks, Scheduler: d, Log: d.log}
	for _, m := range mappings {
		action := m.Action
		if action.RequiresAsync() {
			d.Spawn(func(ctx context.Context) error {
				if err := action.ExecuteAsync(ctx, ec, value); err != nil {
					d.log.Warnw("async action failed", "action", action.ID(), "err", err)
				}
				return nil
			})
			continue
		}
		if err := action.Execute(ec, value); err != nil {
			d.log.Warnw("action failed", "action", action.ID(), "err", err)
		}
	}

	if d.metrics != nil {
		d.metrics.dispatchLatency.Observe(time.Since(start).Seconds())
	}
}

// Spawn runs fn as a tracked async task, bounded by maxConcurrentAsync.
// Implements AsyncScheduler for action.go.
func (d *Dispatcher) Spawn(fn func(context.Context) error) {
	d.asyncGroup.Go(func() error {
		if err := d.sem.Acquire(d.asyncCtx, 1); err != nil {
			return nil
		}
		defer d.sem.Release(1)
		return fn(d.asyncCtx)
	})
}

// ScheduleRelease arranges for release to run after the given duration,
// tracked under key so a later explicit release can cancel it. Implements
// AsyncScheduler for action.go.
func (d *Dispatcher) ScheduleRelease(after time.Duration, key string, release func()) {
	d.releaseMu.Lock()
	defer d.releaseMu.Unlock()

	if old, ok := d.releaseIdx[key]; ok {
		heap.Remove(&d.releases, old.index)
	}
	e := &releaseEntry{deadline: time.Now().Add(after), key: key, fn: release}
	heap.Push(&d.releases, e)
	d.releaseIdx[key] = e
	d.resetTimerLocked()
}

func (d *Dispatcher) resetTimerLocked() {
	if len(d.releases) == 0 {
		if d.releaseTmr != nil {
			d.releaseTmr.Stop()
		}
		return
	}
	next := d.releases[0].deadline
	delay := time.Until(next)
	if delay < 0 {
		delay = 0
	}
	if d.releaseTmr == nil {
		d.releaseTmr = time.NewTimer(delay)
	} else {
		d.releaseTmr.Stop()
		d.releaseTmr.Reset(delay)
	}
}

func (d *Dispatcher) fireDueReleases() {
	now := time.Now()
	var due []*releaseEntry
	d.releaseMu.Lock()
	for len(d.releases) > 0 && !d.releases[0].deadline.After(now) {
		e := heap.Pop(&d.releases).(*releaseEntry)
		delete(d.releaseIdx, e.key)
		due = append(due, e)
	}
	d.resetTimerLocked()
	d.releaseMu.Unlock()

	for _, e := range due {
		e.fn()
	}
}

// cancelRelease removes a scheduled release without running it. It is
// called by releaseAllHeld (profile swap, shutdown) for each held key.
func (d *Dispatcher) cancelRelease(key string) {
	d.releaseMu.Lock()
	defer d.releaseMu.Unlock()
	if e, ok := d.releaseIdx[key]; ok {
		heap.Remove(&d.releases, e.index)
		delete(d.releaseIdx, key)
		d.resetTimerLocked()
	}
}

// Shutdown drains pending events, releases all held resources, cancels
// outstanding async tasks where supported, and awaits the rest, per §4.8.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	close(d.quit)
	select {
	case <-d.done:
	case <-ctx.Done():
	}

	d.releaseAllHeld()

	d.asyncStop()
	waited := make(chan error, 1)
	go func() { waited <- d.asyncGroup.Wait() }()
	select {
	case <-waited:
	case <-ctx.Done():
	}
	return nil
}

// releaseAllHeld synthesizes releases for every currently held resource,
// satisfying the "held-key set is empty after shutdown/profile swap"
// invariant (§8).
func (d *Dispatcher) releaseAllHeld() {
	for _, key := range d.state.HeldKeys() {
		d.cancelRelease(key)
		if !d.state.ReleaseHeld(key) {
			continue
		}
		releaseHeldResource(d.sinks, key)
	}
}

// releaseHeldResource maps an internal state key back to the sink call
// that releases it, per the namespace convention in §4.6/§9.
func releaseHeldResource(sinks *Sinks, key string) {
	var code int
	if n, err := fmt.Sscanf(key, "*Key%d", &code); err == nil && n == 1 {
		_ = sinks.Keyboard.KeyUp(code)
		return
	}
	var idx int
	var name string
	if n, err := fmt.Sscanf(key, "*Btn%d_%s", &idx, &name); err == nil && n == 2 {
		_ = sinks.Gamepad.SetButton(idx, name, false)
	}
}
