package strand

import (
	"sync"
	"time"
)

// Reactor is the single-threaded event dispatch loop underneath a [Kernel].
// It is the sole interleaving mechanism: all strand steps are serialized
// through its dispatch loop.
//
// The [Loop] type is the default implementation. Any substitute must provide
// the same blocking semantics: Run returns only when no scheduled work
// remains, or when Stop unblocks it.
type Reactor interface {
	// ScheduleNextTurn enqueues f to run on a future turn of the dispatch
	// loop, after all previously scheduled turns. It must be safe for use
	// from any goroutine, and must wake a blocked Run.
	ScheduleNextTurn(f func())

	// AddReadinessWatcher registers f as the readiness callback for
	// resource. A resource holds at most one watcher; registering again
	// replaces it. A registered watcher keeps Run blocked even when no
	// turns are queued.
	AddReadinessWatcher(resource any, f func())

	// RemoveReadinessWatcher drops the watcher registered for resource,
	// if any.
	RemoveReadinessWatcher(resource any)

	// Run dispatches turns until no scheduled work, alarms or watchers
	// remain, or until Stop is called. Run must not be called twice at
	// the same time.
	Run()

	// Stop unblocks Run immediately. A Stop with no Run in flight is
	// honored by the next Run, which returns at once. Work still queued
	// is left intact, so a later Run resumes it.
	Stop()
}

// AlarmScheduler is the optional reactor capability behind the [Delay]
// instruction.
type AlarmScheduler interface {
	// ScheduleAlarm arranges for f to run on the reactor goroutine once d
	// has elapsed, and returns a function that cancels the alarm if it has
	// not fired yet. A pending alarm keeps Run blocked.
	ScheduleAlarm(d time.Duration, f func()) (cancel func())
}

type alarm struct {
	when time.Time
	f    func()
}

func (a *alarm) less(other *alarm) bool {
	return a.when.Before(other.when)
}

// A Loop is the default [Reactor]: a mutex-guarded turn queue, a readiness
// watcher registry and a deadline-ordered alarm queue, dispatched by a
// single blocking Run.
//
// Turns run strictly in the order they were scheduled. Alarms run when due.
// When neither turns nor due alarms exist but watchers or future alarms
// remain, Run sleeps until the next deadline or until something wakes it:
// [Loop.ScheduleNextTurn], [Loop.Ready] and [Loop.Stop] are all safe to call
// from other goroutines.
type Loop struct {
	mu       sync.Mutex
	turns    []func()
	turnHead int
	watchers map[any]func()
	alarms   priorityqueue[*alarm]
	wakeup   chan struct{}
	running  bool
	stopped  bool
}

// NewLoop creates an empty [Loop].
func NewLoop() *Loop {
	return &Loop{wakeup: make(chan struct{}, 1)}
}

// ScheduleNextTurn implements the [Reactor] interface.
func (l *Loop) ScheduleNextTurn(f func()) {
	if f == nil {
		panic("strand: ScheduleNextTurn called with nil callback")
	}
	l.mu.Lock()
	l.turns = append(l.turns, f)
	l.mu.Unlock()
	l.wake()
}

// AddReadinessWatcher implements the [Reactor] interface.
func (l *Loop) AddReadinessWatcher(resource any, f func()) {
	if f == nil {
		panic("strand: AddReadinessWatcher called with nil callback")
	}
	l.mu.Lock()
	if l.watchers == nil {
		l.watchers = make(map[any]func())
	}
	l.watchers[resource] = f
	l.mu.Unlock()
}

// RemoveReadinessWatcher implements the [Reactor] interface.
func (l *Loop) RemoveReadinessWatcher(resource any) {
	l.mu.Lock()
	delete(l.watchers, resource)
	l.mu.Unlock()
	// The loop may have become fully idle.
	l.wake()
}

// Ready reports resource as ready: the watcher registered for it, if any, is
// enqueued as a turn. The registration persists until removed, so every
// Ready call enqueues at most one callback run.
//
// Ready is safe for use from any goroutine.
func (l *Loop) Ready(resource any) {
	l.mu.Lock()
	if f, ok := l.watchers[resource]; ok {
		l.turns = append(l.turns, f)
	}
	l.mu.Unlock()
	l.wake()
}

// ScheduleAlarm implements the [AlarmScheduler] interface.
func (l *Loop) ScheduleAlarm(d time.Duration, f func()) (cancel func()) {
	if f == nil {
		panic("strand: ScheduleAlarm called with nil callback")
	}
	a := &alarm{when: time.Now().Add(d), f: f}
	l.mu.Lock()
	l.alarms.Push(a)
	l.mu.Unlock()
	l.wake()
	return func() {
		l.mu.Lock()
		l.alarms.Remove(a)
		l.mu.Unlock()
		l.wake()
	}
}

// Run implements the [Reactor] interface.
//
// Run dispatches queued turns in order, fires alarms as they come due, and
// sleeps in between. It returns when the loop is fully idle, i.e. no turns,
// no alarms and no watchers remain, or as soon as [Loop.Stop] is called.
// A Stop issued before Run makes it return at once. Turns left undispatched
// by a stop stay queued for the next Run.
func (l *Loop) Run() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		panic("strand: Loop.Run called twice at the same time")
	}
	l.running = true

	// Drain a stale wakeup token from a previous Run.
	select {
	case <-l.wakeup:
	default:
	}

	for !l.stopped {
		if l.turnHead < len(l.turns) {
			f := l.turns[l.turnHead]
			l.turns[l.turnHead] = nil
			l.turnHead++
			l.compactTurns()
			l.mu.Unlock()
			f()
			l.mu.Lock()
			continue
		}

		if !l.alarms.Empty() {
			a := l.alarms.Peek()
			if d := time.Until(a.when); d > 0 {
				l.sleep(d)
				continue
			}
			l.alarms.Pop()
			l.mu.Unlock()
			a.f()
			l.mu.Lock()
			continue
		}

		if len(l.watchers) == 0 {
			break
		}

		// Only watchers remain; block until something from outside wakes
		// the loop.
		l.sleep(-1)
	}

	l.running = false
	l.stopped = false
	l.mu.Unlock()
}

// compactTurns reclaims the dispatched prefix of the turn queue so a long
// Run does not pin an ever-growing backing array. Caller holds the lock.
func (l *Loop) compactTurns() {
	switch {
	case l.turnHead == len(l.turns):
		l.turns, l.turnHead = l.turns[:0], 0
	case l.turnHead > len(l.turns)/2:
		n := copy(l.turns, l.turns[l.turnHead:])
		clear(l.turns[n:])
		l.turns, l.turnHead = l.turns[:n], 0
	}
}

// sleep releases the lock, waits for a wakeup or for d to elapse (forever
// when d is negative), and reacquires the lock.
func (l *Loop) sleep(d time.Duration) {
	l.mu.Unlock()
	if d < 0 {
		<-l.wakeup
	} else {
		tm := time.NewTimer(d)
		select {
		case <-l.wakeup:
			tm.Stop()
		case <-tm.C:
		}
	}
	l.mu.Lock()
}

// Stop implements the [Reactor] interface.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.wake()
}

func (l *Loop) wake() {
	select {
	case l.wakeup <- struct{}{}:
	default:
	}
}
