package strand

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

// Stream error kinds.
var (
	// ErrClosed is reported by a read on a closed, drained stream.
	ErrClosed = errors.New("strand: stream closed")
	// ErrLocked is reported when a read or close is attempted while another
	// read is outstanding. Reads do not queue; callers must self-serialize.
	ErrLocked = errors.New("strand: stream locked")
	// ErrReadFailed wraps the cause a stream was poisoned with.
	ErrReadFailed = errors.New("strand: stream read failed")
)

// A Stream is an in-memory readable byte stream consuming the [Suspend]
// primitive: a read with no buffered data suspends its strand on a reactor
// readiness watcher until a producer delivers data.
//
// The producer side ([Stream.Write], [Stream.Fail], [Stream.PumpFrom]) is
// safe for use from any goroutine; delivery happens on reactor turns.
// The consumer side ([Stream.Read], [Stream.Close], [Stream.IsClosed]) must
// run on the reactor goroutine, i.e. inside strand code.
//
// A Stream admits one outstanding read at a time. A second read attempted
// while one is suspended fails immediately with [ErrLocked] rather than
// queueing.
type Stream struct {
	loop    *Loop
	buf     []byte
	closed  bool
	failure error
	reading bool
}

// NewStream creates a [Stream] delivering through l.
func NewStream(l *Loop) *Stream {
	if l == nil {
		panic("strand: NewStream called with nil loop")
	}
	return &Stream{loop: l}
}

// Write appends p to the stream buffer and signals readiness, waking a
// suspended read. The append happens on a future reactor turn; p is copied
// first, so the caller may reuse it. Writes after Close or Fail are dropped.
//
// Write is safe for use from any goroutine.
func (s *Stream) Write(p []byte) {
	data := slices.Clone(p)
	s.loop.ScheduleNextTurn(func() {
		if s.closed || s.failure != nil {
			return
		}
		s.buf = append(s.buf, data...)
		s.loop.Ready(s)
	})
}

// Fail poisons the stream with cause on a future reactor turn: the
// outstanding read, and every read after it, fails with [ErrReadFailed]
// wrapping cause.
//
// Fail is safe for use from any goroutine.
func (s *Stream) Fail(cause error) {
	if cause == nil {
		panic("strand: Fail called with nil cause")
	}
	s.loop.ScheduleNextTurn(func() {
		if s.closed || s.failure != nil {
			return
		}
		s.failure = cause
		s.loop.Ready(s)
	})
}

// Close releases the stream. It fails with [ErrLocked] if a read is
// outstanding; the read is left untouched.
func (s *Stream) Close() error {
	if s.reading {
		return ErrLocked
	}
	s.closed = true
	s.buf = nil
	return nil
}

// IsClosed reports whether the stream has been closed. It is a pure query.
func (s *Stream) IsClosed() bool {
	return s.closed
}

// Read returns a [Coroutine] that reads at most max bytes from the stream.
//
// If data is buffered, the read completes synchronously with up to max
// bytes as a []byte. Otherwise the strand suspends until a producer delivers
// data, then reads. A read on a locked stream fails with [ErrLocked], on a
// poisoned stream with [ErrReadFailed], and on a closed, drained stream with
// [ErrClosed].
//
// If the strand is terminated while the read is suspended, the readiness
// watcher stays registered until the stream next signals; its callback then
// observes the settled strand, releases the lock and delivers nothing.
func (s *Stream) Read(max int) Coroutine {
	if max <= 0 {
		panic("strand: Read called with non-positive max")
	}
	suspended := false
	return CoroutineFunc(func(v any, err error) Outcome {
		if err != nil {
			return Raised(err)
		}
		if suspended {
			return Returned(v)
		}
		switch {
		case s.reading:
			return Raised(ErrLocked)
		case s.failure != nil:
			return Raised(s.readFailed())
		case len(s.buf) != 0:
			return Returned(s.take(max))
		case s.closed:
			return Raised(ErrClosed)
		}
		suspended = true
		s.reading = true
		return Yielded(Suspend(func(st *Strand) {
			s.loop.AddReadinessWatcher(s, func() {
				s.loop.RemoveReadinessWatcher(s)
				s.reading = false
				if st.Settled() {
					return
				}
				switch {
				case s.failure != nil:
					st.ResumeWithError(s.readFailed())
				case len(s.buf) != 0:
					st.ResumeWithValue(s.take(max))
				default:
					st.ResumeWithError(ErrClosed)
				}
			})
		}))
	})
}

func (s *Stream) take(max int) []byte {
	n := min(max, len(s.buf))
	p := slices.Clone(s.buf[:n])
	s.buf = s.buf[n:]
	return p
}

func (s *Stream) readFailed() error {
	return fmt.Errorf("%w: %w", ErrReadFailed, s.failure)
}

// PumpFrom bridges r into the stream from a new goroutine, reading chunk
// bytes at a time. On io.EOF the stream is marked closed once the buffered
// data drains through pending reads; any other read error poisons the stream
// via [Stream.Fail]. The goroutine exits when r does.
func (s *Stream) PumpFrom(r io.Reader, chunk int) {
	if chunk <= 0 {
		panic("strand: PumpFrom called with non-positive chunk")
	}
	go func() {
		buf := make([]byte, chunk)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				s.Write(buf[:n])
			}
			if err != nil {
				if err == io.EOF {
					s.loop.ScheduleNextTurn(func() {
						if s.closed || s.failure != nil {
							return
						}
						s.closed = true
						s.loop.Ready(s)
					})
				} else {
					s.Fail(err)
				}
				return
			}
		}
	}()
}
