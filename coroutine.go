package strand

// A Coroutine is a resumable computation, similar to a function but
// cooperative and stackless.
//
// The engine calls Resume repeatedly, feeding in either a value or an error,
// and acts on the returned [Outcome]. The first resume of a frame carries a
// nil value and a nil error. A non-nil err is an exception injected by a
// failed inner frame or by [Strand.ResumeWithError]; the coroutine may handle
// it or propagate it by returning [Raised].
//
// Coroutines written by hand are state machines; see [CoroutineFunc]. For a
// direct, suspending style, see [NewGenerator].
type Coroutine interface {
	Resume(v any, err error) Outcome
}

// A CoroutineFunc is a func that implements the [Coroutine] interface.
type CoroutineFunc func(v any, err error) Outcome

// Resume implements the [Coroutine] interface.
func (f CoroutineFunc) Resume(v any, err error) Outcome { return f(v, err) }

// Do returns a [Coroutine] that calls f once and completes with its result.
func Do(f func() (any, error)) Coroutine {
	return CoroutineFunc(func(_ any, err error) Outcome {
		if err != nil {
			return Raised(err)
		}
		v, err := f()
		if err != nil {
			return Raised(err)
		}
		return Returned(v)
	})
}

// Just returns a [Coroutine] that completes immediately with v.
func Just(v any) Coroutine {
	return CoroutineFunc(func(any, error) Outcome {
		return Returned(v)
	})
}

// Sequence returns a [Coroutine] that delegates to each of the given
// coroutines in order. The result of each one is discarded except the last,
// which becomes the result of the whole sequence. An error raised by any of
// them propagates and skips the rest.
//
// Sequence of no coroutines completes immediately with a nil value.
func Sequence(s ...Coroutine) Coroutine {
	i := 0
	return CoroutineFunc(func(v any, err error) Outcome {
		if err != nil {
			return Raised(err)
		}
		if i == len(s) {
			return Returned(v)
		}
		c := s[i]
		i++
		return Yielded(c)
	})
}
