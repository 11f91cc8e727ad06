package strand

// Status is the lifecycle state of a [Strand].
type Status int8

const (
	// Pending means the strand has been created but its entry coroutine has
	// not started; execution is always deferred to a later reactor turn.
	Pending Status = iota
	// Running means the strand is currently executing a frame.
	Running
	// Suspended means the strand yielded an [Instruction] and is waiting for
	// a resume call.
	Suspended
	// Succeeded means the strand settled with a value.
	Succeeded
	// Failed means an error reached the bottom of the frame stack uncaught.
	Failed
	// Terminated means the strand was externally aborted via
	// [Strand.Terminate].
	Terminated
)

// Settled reports whether st is one of the three terminal states.
func (st Status) Settled() bool {
	return st == Succeeded || st == Failed || st == Terminated
}

func (st Status) String() string {
	switch st {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// A Strand is the addressable handle for one running computation.
//
// A Strand is created by [Kernel.Execute]. It owns a last-in-first-out stack
// of [Coroutine] frames, driven by a trampoline until the strand settles in
// exactly one of three terminal states: [Succeeded], [Failed] or
// [Terminated]. The terminal outcome is delivered exactly once to the
// attached [StrandObserver], and is also readable via [Strand.Result].
//
// A Strand must not be shared across goroutines without external
// synchronization; all of its methods are meant to be called on the reactor
// goroutine, or through thread-safe reactor scheduling.
type Strand struct {
	id       uint64
	kernel   *Kernel
	status   Status
	frames   []Coroutine
	observer StrandObserver
	value    any
	err      error
	cleanups []func()

	// stepping flattens synchronous resumes into the running trampoline so
	// that instruction chains cannot grow the Go stack.
	stepping bool
	resumed  bool
	input    any
	inputErr error
}

// ID returns the strand's identity: a monotonically increasing integer,
// starting at 1, unique within its kernel and assigned at creation.
func (s *Strand) ID() uint64 { return s.id }

// Kernel returns the kernel that created s.
func (s *Strand) Kernel() *Kernel { return s.kernel }

// Status returns the current lifecycle state of s.
func (s *Strand) Status() Status { return s.status }

// Settled reports whether s has reached a terminal state.
func (s *Strand) Settled() bool { return s.status.Settled() }

// Result returns the terminal outcome of s.
//
// For a succeeded strand it returns the success value and a nil error; for
// a failed strand, a nil value and the uncaught error; for a terminated
// strand, a nil value and a [*TerminatedError]. Before settlement both
// return values are nil.
func (s *Strand) Result() (any, error) {
	switch s.status {
	case Succeeded:
		return s.value, nil
	case Failed:
		return nil, s.err
	case Terminated:
		return nil, &TerminatedError{Strand: s}
	default:
		return nil, nil
	}
}

// start pushes entry as the sole frame and runs the first step.
// It is invoked only from the reactor callback enqueued by Kernel.Execute,
// so no strand begins executing on the call stack that created it.
func (s *Strand) start(entry Coroutine) {
	if s.status != Pending {
		// Terminated before the first step; the observer has already been
		// notified and none of the entry code must run.
		return
	}
	s.frames = append(s.frames, entry)
	s.step(nil, nil)
}

// ResumeWithValue advances a suspended strand, feeding v into the top frame.
//
// ResumeWithValue and [Strand.ResumeWithError] are the only ways to advance
// a suspended strand. Calling either on a strand that is not currently
// suspended is undefined behavior; the engine does not guard against it.
func (s *Strand) ResumeWithValue(v any) {
	s.resume(v, nil)
}

// ResumeWithError advances a suspended strand, injecting err as an exception
// into the top frame. The frame may handle the error or propagate it with
// [Raised].
//
// See [Strand.ResumeWithValue] for the calling contract.
func (s *Strand) ResumeWithError(err error) {
	s.resume(nil, err)
}

func (s *Strand) resume(v any, err error) {
	if s.stepping {
		s.resumed = true
		s.input, s.inputErr = v, err
		return
	}
	s.step(v, err)
}

// step is the trampoline. It feeds the input into the top frame and loops on
// the outcome: returns pop toward the bottom, raises propagate frame by
// frame, yields either push a delegated frame, execute an instruction, or
// self-resume with a plain value.
func (s *Strand) step(v any, err error) {
	s.status = Running
	s.stepping = true

	for {
		if len(s.frames) == 0 {
			s.stepping = false
			if err != nil {
				s.settle(Failed, nil, err)
			} else {
				s.settle(Succeeded, v, nil)
			}
			return
		}

		top := s.frames[len(s.frames)-1]
		out := top.Resume(v, err)

		if s.Settled() {
			// The frame settled the strand itself, e.g. via Terminate.
			s.stepping = false
			return
		}

		switch out.action {
		case doReturn:
			s.popFrame()
			v, err = out.value, nil
		case doRaise:
			s.popFrame()
			v, err = nil, out.err
		case doYield:
			switch y := out.value.(type) {
			case Coroutine:
				s.frames = append(s.frames, y)
				v, err = nil, nil
			case Instruction:
				s.status = Suspended
				s.resumed = false
				y.execute(s)
				if !s.resumed {
					s.stepping = false
					return
				}
				if s.Settled() {
					s.stepping = false
					return
				}
				s.status = Running
				v, err = s.input, s.inputErr
				s.input, s.inputErr = nil, nil
			default:
				v, err = y, nil
			}
		default:
			panic("strand: internal error: unknown action")
		}
	}
}

func (s *Strand) popFrame() {
	i := len(s.frames) - 1
	s.frames[i] = nil
	s.frames = s.frames[:i]
}

// Terminate aborts s.
//
// If s has already settled, Terminate is a no-op. Otherwise the frame stack
// is discarded without running any unwinding code on it, s transitions to
// [Terminated], and the observer is notified with the terminated case.
// A pending resumption arranged by a suspended instruction is not revoked;
// each instruction documents its own behavior when it fires against a
// settled strand.
func (s *Strand) Terminate() {
	if s.Settled() {
		return
	}
	s.settle(Terminated, nil, nil)
}

// onSettle registers f to run once when s settles, in registration order.
// Used by instructions to release resources they arranged.
func (s *Strand) onSettle(f func()) {
	s.cleanups = append(s.cleanups, f)
}

func (s *Strand) settle(st Status, v any, err error) {
	s.status = st
	s.value = v
	s.err = err

	clear(s.frames)
	s.frames = nil

	cleanups := s.cleanups
	s.cleanups = nil
	for _, f := range cleanups {
		f()
	}

	if s.observer != nil {
		s.deliver()
	}
}

// Observe attaches o to s. A strand holds at most one observer; attaching a
// second one panics.
//
// If s has already settled, the buffered terminal outcome is replayed
// synchronously, so exactly one of the three callbacks still fires exactly
// once.
func (s *Strand) Observe(o StrandObserver) {
	if o == nil {
		panic("strand: Observe called with nil observer")
	}
	if s.observer != nil {
		panic("strand: observer already attached")
	}
	s.observer = o
	if s.Settled() {
		s.deliver()
	}
}

func (s *Strand) deliver() {
	switch s.status {
	case Succeeded:
		s.observer.OnSuccess(s, s.value)
	case Failed:
		s.observer.OnFailure(s, s.err)
	case Terminated:
		s.observer.OnTerminated(s)
	}
}
