package strand

import "time"

type instructionKind int8

const (
	_ instructionKind = iota
	suspendInstruction
	returnInstruction
	noopInstruction
	pauseInstruction
	delayInstruction
)

// An Instruction is a command a [Coroutine] yields to request a kernel
// service. The instruction set is closed; each kind is executed by the
// engine against the yielding [Strand].
//
// Contract: executing an instruction results in exactly one future call to
// [Strand.ResumeWithValue] or [Strand.ResumeWithError] on that strand,
// possibly synchronous. Zero resumes leaks the strand forever; more than one
// is a caller bug the engine does not defend against.
//
// An Instruction is created by calling one of [Suspend], [Return], [Noop],
// [Pause] and [Delay].
type Instruction struct {
	kind  instructionKind
	value any           // used by returnInstruction only
	setup func(*Strand) // used by suspendInstruction only
	delay time.Duration // used by delayInstruction only
}

// Suspend returns an [Instruction] that pauses the yielding strand.
//
// The engine invokes setup exactly once, synchronously, with the suspended
// strand, giving it the chance to arrange a later resumption, e.g. by
// registering a reactor readiness watcher that calls
// [Strand.ResumeWithValue] once and removes itself. The strand does not
// advance until something calls one of its resume methods.
//
// A setup that arranges nothing leaves the strand suspended forever; if the
// reactor then goes idle, [Kernel.Wait] returns and [Start] reports
// [ErrNeverSettled].
func Suspend(setup func(*Strand)) Instruction {
	if setup == nil {
		panic("strand: Suspend called with nil setup")
	}
	return Instruction{kind: suspendInstruction, setup: setup}
}

// Return returns an [Instruction] that unwinds the entire frame stack, not
// just the yielding frame, delivering v as the strand's success outcome.
// Any remaining frames are short-circuited.
func Return(v any) Instruction {
	return Instruction{kind: returnInstruction, value: v}
}

// Noop returns an [Instruction] that resumes the strand immediately with no
// value. It is used where a coroutine must yield without requesting any
// service.
func Noop() Instruction {
	return Instruction{kind: noopInstruction}
}

// Pause returns an [Instruction] that reschedules the strand's resume onto
// the next reactor turn, letting other scheduled work run first. It is a
// cooperative cancellation point: if the strand settles before the turn
// fires, the resume is dropped.
func Pause() Instruction {
	return Instruction{kind: pauseInstruction}
}

// Delay returns an [Instruction] that resumes the strand after duration d.
//
// Delay requires the kernel's reactor to implement [AlarmScheduler]; the
// default [Loop] does. If the strand settles before the alarm fires, the
// resume is dropped and the alarm removed.
func Delay(d time.Duration) Instruction {
	return Instruction{kind: delayInstruction, delay: d}
}

func (in Instruction) execute(s *Strand) {
	switch in.kind {
	case suspendInstruction:
		in.setup(s)
	case returnInstruction:
		clear(s.frames)
		s.frames = s.frames[:0]
		s.ResumeWithValue(in.value)
	case noopInstruction:
		s.ResumeWithValue(nil)
	case pauseInstruction:
		s.kernel.reactor.ScheduleNextTurn(func() {
			if s.Settled() {
				return
			}
			s.ResumeWithValue(nil)
		})
	case delayInstruction:
		as, ok := s.kernel.reactor.(AlarmScheduler)
		if !ok {
			panic("strand: Delay requires a reactor that schedules alarms")
		}
		var cancel func()
		cancel = as.ScheduleAlarm(in.delay, func() {
			if s.Settled() {
				return
			}
			s.ResumeWithValue(nil)
		})
		s.onSettle(cancel)
	default:
		panic("strand: internal error: unknown instruction")
	}
}
