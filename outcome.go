package strand

type action int8

const (
	_ action = iota
	doYield
	doReturn
	doRaise
)

// Outcome is the result of resuming a [Coroutine] once.
//
// An Outcome is created by calling one of the following functions:
//   - [Yielded]: for handing a value to the engine and pausing the frame;
//   - [Returned]: for completing the frame with a value;
//   - [Raised]: for failing the frame with an error.
type Outcome struct {
	action action
	value  any
	err    error
}

// Yielded returns an [Outcome] that hands v to the engine and pauses the
// frame until the engine feeds the next input.
//
// What v is determines what the engine does:
//   - a [Coroutine] is pushed as a new frame (delegation);
//   - an [Instruction] is executed, typically suspending the strand;
//   - anything else resumes the frame immediately with v as input.
func Yielded(v any) Outcome {
	return Outcome{action: doYield, value: v}
}

// Returned returns an [Outcome] that completes the frame with v.
// If the frame was the last one, the strand settles as succeeded.
// Otherwise v becomes the input of the frame below.
func Returned(v any) Outcome {
	return Outcome{action: doReturn, value: v}
}

// Raised returns an [Outcome] that fails the frame with err.
// The error is injected into the frame below, which may handle it; an error
// that reaches the bottom of the stack settles the strand as failed.
//
// Raised panics if err is nil.
func Raised(err error) Outcome {
	if err == nil {
		panic("strand: Raised called with nil error")
	}
	return Outcome{action: doRaise, err: err}
}
