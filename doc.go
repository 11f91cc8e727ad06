// Package strand is a cooperative multitasking runtime.
//
// It drives many independently written resumable computations, called
// strands, to completion on top of a single-threaded event reactor,
// without dedicating an OS thread or a goroutine to each of them.
//
// # Strands and Coroutines
//
// A strand is one cooperatively scheduled execution context. It owns a stack
// of [Coroutine] frames and steps the top frame through a trampoline until
// the strand settles. A coroutine advances by returning an [Outcome] from its
// Resume method:
//
//   - [Yielded] with a nested [Coroutine] delegates to it; the nested
//     coroutine's result (or error) flows back into the yielding frame.
//   - [Yielded] with an [Instruction] requests a kernel service, such as
//     suspending until some external event resumes the strand.
//   - [Yielded] with any other value is a no-op yield point; the strand
//     resumes immediately with that same value.
//   - [Returned] completes the frame; an empty frame stack settles the strand
//     as succeeded.
//   - [Raised] fails the frame; the error is injected into the frame below,
//     which may handle it or let it propagate, exactly like structured
//     exceptions. An error that reaches the bottom fails the strand.
//
// Coroutines can be written as explicit state machines with [CoroutineFunc],
// or in a direct style with [NewGenerator], which backs the computation with
// a goroutine and a pair of channels so that it can suspend mid-function.
//
// # Kernel and Reactor
//
// A [Kernel] owns a [Reactor] and the strand id space. [Kernel.Execute]
// schedules a new strand; none of its code runs before the current reactor
// turn completes. [Kernel.Wait] blocks until the reactor goes idle, or until
// [Kernel.Interrupt] aborts it with an error; Wait may be called again
// afterward to resume the remaining in-flight strands. [Start] is the
// blocking top-level entry point that runs a single coroutine to its result.
//
// Exactly one coroutine frame executes at any instant. Control changes
// strands only at yield points, never by preemption. The [Loop] type is the
// default reactor; any implementation of the [Reactor] interface can be
// substituted.
//
// # Outcome Delivery
//
// Every strand reaches exactly one of three terminal states: succeeded,
// failed, or terminated. A [StrandObserver] attached to the strand is
// notified exactly once, with the matching case. Attaching after the strand
// has already settled replays the buffered outcome immediately.
package strand
