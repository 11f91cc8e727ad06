package strand

import (
	"fmt"
	"runtime/debug"
)

// A PanicError wraps a panic recovered from a generator function, carrying
// the panic value and the stack trace captured at the panic site.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("strand: panic: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value if it is an error, else nil.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

type resumption struct {
	value any
	err   error
}

// A Yielder is the suspension handle passed to a generator function.
// It must not escape the function; the backing goroutine owns it.
type Yielder struct {
	in  chan resumption
	out chan Outcome
}

// Yield suspends the generator function, handing v to the engine, and blocks
// until the strand is resumed. It returns the resumption input: the value
// fed back by the engine, or a non-nil error when an exception was injected,
// which the function may handle or return to propagate.
//
// As with any yield, v may be a nested [Coroutine] (its result comes back
// through Yield), an [Instruction], or a plain value for a no-op yield
// point.
func (y *Yielder) Yield(v any) (any, error) {
	y.out <- Yielded(v)
	r := <-y.in
	return r.value, r.err
}

type generator struct {
	f       func(*Yielder) (any, error)
	y       *Yielder
	started bool
	done    bool
}

// NewGenerator returns a [Coroutine] that runs f in a direct, suspending
// style: f calls [Yielder.Yield] wherever a hand-written state machine would
// return [Yielded]. Returning (v, nil) completes the coroutine with v;
// returning a non-nil error raises it; a panic raises a [*PanicError].
//
// Caveat: requires spawning a goroutine (which is stackful) on the first
// resume. The goroutine exits when f returns; it leaks if the coroutine is
// abandoned mid-flight, or if its strand is terminated, because termination
// discards frames without running any unwinding code.
func NewGenerator(f func(*Yielder) (any, error)) Coroutine {
	if f == nil {
		panic("strand: NewGenerator called with nil function")
	}
	return &generator{
		f: f,
		y: &Yielder{in: make(chan resumption), out: make(chan Outcome)},
	}
}

func (g *generator) Resume(v any, err error) Outcome {
	if g.done {
		panic("strand: generator resumed after completion")
	}
	if !g.started {
		g.started = true
		go g.run()
	} else {
		g.y.in <- resumption{value: v, err: err}
	}
	out := <-g.y.out
	if out.action != doYield {
		g.done = true
	}
	return out
}

func (g *generator) run() {
	defer func() {
		if p := recover(); p != nil {
			g.y.out <- Raised(&PanicError{Value: p, Stack: debug.Stack()})
		}
	}()
	v, err := g.f(g.y)
	if err != nil {
		g.y.out <- Raised(err)
		return
	}
	g.y.out <- Returned(v)
}
