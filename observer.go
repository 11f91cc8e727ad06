package strand

// A StrandObserver receives the terminal outcome of a [Strand].
//
// Exactly one of the three callbacks fires, exactly once, when the strand
// settles. Attaching after settlement replays the buffered outcome; see
// [Strand.Observe].
type StrandObserver interface {
	// OnSuccess is called when the strand settles with a value.
	OnSuccess(s *Strand, v any)
	// OnFailure is called when an uncaught error reaches the bottom of the
	// strand's frame stack.
	OnFailure(s *Strand, err error)
	// OnTerminated is called when the strand is aborted via
	// [Strand.Terminate]. No coroutine-produced value or error exists.
	OnTerminated(s *Strand)
}

// ObserverFuncs implements [StrandObserver] with plain captured closures.
// Nil fields are ignored.
type ObserverFuncs struct {
	Success    func(s *Strand, v any)
	Failure    func(s *Strand, err error)
	Terminated func(s *Strand)
}

// OnSuccess implements the [StrandObserver] interface.
func (o ObserverFuncs) OnSuccess(s *Strand, v any) {
	if o.Success != nil {
		o.Success(s, v)
	}
}

// OnFailure implements the [StrandObserver] interface.
func (o ObserverFuncs) OnFailure(s *Strand, err error) {
	if o.Failure != nil {
		o.Failure(s, err)
	}
}

// OnTerminated implements the [StrandObserver] interface.
func (o ObserverFuncs) OnTerminated(s *Strand) {
	if o.Terminated != nil {
		o.Terminated(s)
	}
}
