package strand_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandkit/strand"
)

func TestExecuteDefersFirstStep(t *testing.T) {
	k := strand.NewKernel(nil)

	ran := false
	s := k.Execute(strand.Do(func() (any, error) {
		ran = true
		return nil, nil
	}))

	assert.False(t, ran, "entry code must not run before the creating turn completes")
	assert.Equal(t, strand.Pending, s.Status())

	require.NoError(t, k.Wait())
	assert.True(t, ran)
	assert.Equal(t, strand.Succeeded, s.Status())
}

func TestInterruptIsResumable(t *testing.T) {
	k := strand.NewKernel(nil)
	errStop := errors.New("stop the world")

	var order []string
	record := func(s string) strand.Coroutine {
		return strand.Do(func() (any, error) {
			order = append(order, s)
			return nil, nil
		})
	}

	k.Execute(record("a"))
	k.Execute(strand.Do(func() (any, error) {
		k.Interrupt(errStop)
		return nil, nil
	}))
	k.Execute(record("b"))
	k.Execute(record("c"))

	err := k.Wait()
	require.Equal(t, errStop, err)
	assert.Equal(t, []string{"a"}, order, "strands after the interrupt must not have run yet")

	require.NoError(t, k.Wait())
	assert.Equal(t, []string{"a", "b", "c"}, order,
		"a second Wait must resume the remaining strands in creation order")
}

func TestInterruptBeforeWaitSkipsQueuedWork(t *testing.T) {
	k := strand.NewKernel(nil)
	errStop := errors.New("stop")

	ran := false
	k.Execute(strand.Do(func() (any, error) {
		ran = true
		return nil, nil
	}))

	k.Interrupt(errStop)

	require.Equal(t, errStop, k.Wait())
	assert.False(t, ran, "an interrupt pending before Wait must win over queued strands")

	require.NoError(t, k.Wait())
	assert.True(t, ran)
}

func TestInterruptClearedAfterWait(t *testing.T) {
	k := strand.NewKernel(nil)
	errStop := errors.New("stop")

	k.Interrupt(errStop)
	require.Equal(t, errStop, k.Wait())
	require.NoError(t, k.Wait())
}

func TestInterruptLastWriteWins(t *testing.T) {
	k := strand.NewKernel(nil)
	err1 := errors.New("first")
	err2 := errors.New("second")

	k.Interrupt(err1)
	k.Interrupt(err2)

	require.Equal(t, err2, k.Wait())
}

func TestStopWaitReturnsNil(t *testing.T) {
	k := strand.NewKernel(nil)

	var order []string
	k.Execute(strand.Do(func() (any, error) {
		order = append(order, "a")
		k.Stop()
		return nil, nil
	}))
	k.Execute(strand.Do(func() (any, error) {
		order = append(order, "b")
		return nil, nil
	}))

	require.NoError(t, k.Wait())
	assert.Equal(t, []string{"a"}, order)

	require.NoError(t, k.Wait())
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestStartNeverSettled(t *testing.T) {
	entry := strand.CoroutineFunc(func(any, error) strand.Outcome {
		// Suspend without arranging any resumption.
		return strand.Yielded(strand.Suspend(func(*strand.Strand) {}))
	})

	_, err := strand.Start(entry, nil)
	require.ErrorIs(t, err, strand.ErrNeverSettled)
}

func TestStartTerminated(t *testing.T) {
	entry := strand.CoroutineFunc(func(any, error) strand.Outcome {
		return strand.Yielded(strand.Suspend(func(s *strand.Strand) {
			s.Kernel().Reactor().ScheduleNextTurn(s.Terminate)
		}))
	})

	_, err := strand.Start(entry, nil)

	var te *strand.TerminatedError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, uint64(1), te.Strand.ID())
}

func TestSuspendResumeRoundTrip(t *testing.T) {
	entry := strand.CoroutineFunc(func(v any, err error) strand.Outcome {
		if err != nil {
			return strand.Raised(err)
		}
		if v == nil {
			return strand.Yielded(strand.Suspend(func(s *strand.Strand) {
				s.Kernel().Reactor().ScheduleNextTurn(func() {
					s.ResumeWithValue("pong")
				})
			}))
		}
		return strand.Returned(v)
	})

	v, err := strand.Start(entry, nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", v)
}

func TestResumeWithErrorInjects(t *testing.T) {
	errBoom := errors.New("boom")

	entry := strand.CoroutineFunc(func(v any, err error) strand.Outcome {
		if err != nil {
			return strand.Returned("handled: " + err.Error())
		}
		return strand.Yielded(strand.Suspend(func(s *strand.Strand) {
			s.Kernel().Reactor().ScheduleNextTurn(func() {
				s.ResumeWithError(errBoom)
			})
		}))
	})

	v, err := strand.Start(entry, nil)
	require.NoError(t, err)
	assert.Equal(t, "handled: boom", v)
}

func TestJoinCollectsInOrder(t *testing.T) {
	v, err := strand.Start(strand.Join(
		strand.Just("a"),
		strand.Just("b"),
		strand.Just("c"),
	), nil)

	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, v)
}

func TestJoinPropagatesFirstFailure(t *testing.T) {
	errBoom := errors.New("boom")

	settled := 0
	child := func(fail bool) strand.Coroutine {
		return strand.Do(func() (any, error) {
			settled++
			if fail {
				return nil, errBoom
			}
			return nil, nil
		})
	}

	_, err := strand.Start(strand.Join(child(false), child(true), child(false)), nil)
	require.Equal(t, errBoom, err)
	assert.Equal(t, 3, settled, "Join must wait for every child to settle")
}

func TestJoinEmpty(t *testing.T) {
	v, err := strand.Start(strand.Join(), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, v)
}
