package strand

import (
	"errors"
	"strconv"
)

// ErrNeverSettled is reported by [Start] when the reactor goes idle with the
// entry strand never reaching a terminal state, which signals a scheduling
// deadlock, e.g. a suspension that nothing ever resumes.
var ErrNeverSettled = errors.New("strand: entry computation never settled")

// A TerminatedError marks a strand that was externally aborted via
// [Strand.Terminate]. It is synthesized by the runtime; no coroutine-produced
// error exists for a terminated strand.
type TerminatedError struct {
	Strand *Strand
}

func (e *TerminatedError) Error() string {
	return "strand: strand " + strconv.FormatUint(e.Strand.ID(), 10) + " terminated"
}
