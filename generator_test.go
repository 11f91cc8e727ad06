package strand_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/strandkit/strand"
)

func TestGeneratorRoundTrip(t *testing.T) {
	defer goleak.VerifyNone(t)

	entry := strand.NewGenerator(func(y *strand.Yielder) (any, error) {
		total := 0
		for _, c := range []strand.Coroutine{strand.Just(1), strand.Just(2), strand.Just(3)} {
			v, err := y.Yield(c)
			if err != nil {
				return nil, err
			}
			total += v.(int)
		}
		return total, nil
	})

	v, err := strand.Start(entry, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, v)
}

func TestGeneratorPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	entry := strand.NewGenerator(func(y *strand.Yielder) (any, error) {
		panic("boom")
	})

	_, err := strand.Start(entry, nil)

	var pe *strand.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "boom", pe.Value)
	assert.NotEmpty(t, pe.Stack)
}

func TestGeneratorPanicErrorUnwrap(t *testing.T) {
	defer goleak.VerifyNone(t)

	errBoom := errors.New("boom")

	entry := strand.NewGenerator(func(y *strand.Yielder) (any, error) {
		panic(errBoom)
	})

	_, err := strand.Start(entry, nil)
	require.ErrorIs(t, err, errBoom)
}

func TestGeneratorHandlesInjectedError(t *testing.T) {
	defer goleak.VerifyNone(t)

	errBoom := errors.New("boom")

	entry := strand.NewGenerator(func(y *strand.Yielder) (any, error) {
		_, err := y.Yield(strand.Do(func() (any, error) { return nil, errBoom }))
		if errors.Is(err, errBoom) {
			return "recovered", nil
		}
		return nil, errors.New("expected an injected error")
	})

	v, err := strand.Start(entry, nil)
	require.NoError(t, err)
	assert.Equal(t, "recovered", v)
}

func TestGeneratorPropagatesError(t *testing.T) {
	defer goleak.VerifyNone(t)

	errBoom := errors.New("boom")

	entry := strand.NewGenerator(func(y *strand.Yielder) (any, error) {
		v, err := y.Yield(strand.Do(func() (any, error) { return nil, errBoom }))
		return v, err
	})

	_, err := strand.Start(entry, nil)
	require.Equal(t, errBoom, err)
}
