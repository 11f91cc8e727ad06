package strand

import "sync"

// A Kernel owns a [Reactor] and the strand id space, and orchestrates the
// lifecycle of every strand it creates.
//
// A Kernel is created once per top-level run and may be waited on multiple
// times across interrupts. It does not keep a strand registry; strand
// lifetime is held by the reactor-callback closures that reference them.
type Kernel struct {
	mu      sync.Mutex
	reactor Reactor
	lastID  uint64
	pending error
}

// NewKernel creates a [Kernel] driving r. A nil r builds a default [Loop].
func NewKernel(r Reactor) *Kernel {
	if r == nil {
		r = NewLoop()
	}
	return &Kernel{reactor: r}
}

// Reactor returns the reactor the kernel drives.
func (k *Kernel) Reactor() Reactor { return k.reactor }

// Execute creates a [Strand] with a fresh id and schedules its entry
// coroutine onto a future reactor turn.
//
// The handle is returned before any of the coroutine's code runs, so the
// caller can attach an observer or retain the handle safely. Strands
// scheduled in the same turn begin, in creation order, on following turns.
//
// Execute is safe for concurrent use.
func (k *Kernel) Execute(entry Coroutine) *Strand {
	if entry == nil {
		panic("strand: Execute called with nil coroutine")
	}

	k.mu.Lock()
	k.lastID++
	s := &Strand{id: k.lastID, kernel: k}
	k.mu.Unlock()

	k.reactor.ScheduleNextTurn(func() { s.start(entry) })

	return s
}

// Wait runs the reactor's blocking loop until no scheduled work, alarms or
// watchers remain, or until [Kernel.Interrupt] stops it.
//
// If an interrupt error is pending when the loop returns, Wait clears it and
// returns it to the caller. Wait may be called again afterward to resume the
// remaining in-flight strands; the kernel is resumable across interrupts.
//
// Wait must not be called twice at the same time.
func (k *Kernel) Wait() error {
	k.reactor.Run()

	k.mu.Lock()
	err := k.pending
	k.pending = nil
	k.mu.Unlock()

	return err
}

// Interrupt records err as pending and stops the reactor immediately.
// The error is returned by the call blocked in [Kernel.Wait].
//
// Interrupt does not touch individual strand states; suspended strands
// remain exactly as they were for the next Wait. A second Interrupt before
// the pending error is drained overwrites it (last write wins). An
// Interrupt issued while no Wait is in flight short-circuits the next
// Wait, which returns the error before running any queued work.
//
// Interrupt is safe for concurrent use.
func (k *Kernel) Interrupt(err error) {
	k.mu.Lock()
	k.pending = err
	k.mu.Unlock()

	k.reactor.Stop()
}

// Stop stops the reactor without recording an error; [Kernel.Wait] then
// returns nil. Like [Kernel.Interrupt], a Stop issued while no Wait is in
// flight makes the next Wait return at once.
func (k *Kernel) Stop() {
	k.reactor.Stop()
}

// Start builds a fresh [Kernel] around r (nil builds a default [Loop]),
// executes entry, and blocks until the entry strand settles or the reactor
// goes idle.
//
// It returns the strand's success value, or the uncaught error of a failed
// strand with its identity preserved, or a [*TerminatedError] if the strand
// was terminated. If the reactor goes idle with the strand never settled,
// Start returns [ErrNeverSettled].
func Start(entry Coroutine, r Reactor) (any, error) {
	k := NewKernel(r)

	var (
		settled bool
		value   any
		failure error
	)

	s := k.Execute(entry)
	s.Observe(ObserverFuncs{
		Success: func(_ *Strand, v any) {
			settled, value = true, v
		},
		Failure: func(_ *Strand, err error) {
			settled, failure = true, err
		},
		Terminated: func(s *Strand) {
			settled, failure = true, &TerminatedError{Strand: s}
		},
	})

	if err := k.Wait(); err != nil {
		return nil, err
	}
	if !settled {
		return nil, ErrNeverSettled
	}
	if failure != nil {
		return nil, failure
	}
	return value, nil
}
