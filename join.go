package strand

// Join returns a [Coroutine] that runs each of the given coroutines as its
// own strand on the owning kernel and suspends until all of them settle.
//
// If every child succeeds, Join completes with a []any of their values in
// argument order. If any child fails or is terminated, Join raises the first
// such error once the remaining children have settled too; it never resolves
// early. Join of no coroutines completes with an empty slice.
//
// Children are not canceled when the joining strand is terminated; they run
// to their own terminal states, and the resume they would deliver is
// dropped.
func Join(s ...Coroutine) Coroutine {
	suspended := false
	return CoroutineFunc(func(v any, err error) Outcome {
		if err != nil {
			return Raised(err)
		}
		if suspended {
			return Returned(v)
		}
		suspended = true
		return Yielded(Suspend(func(parent *Strand) {
			k := parent.Kernel()
			n := len(s)
			results := make([]any, len(s))
			var firstErr error

			settleOne := func() {
				if n--; n != 0 {
					return
				}
				if parent.Settled() {
					return
				}
				if firstErr != nil {
					parent.ResumeWithError(firstErr)
				} else {
					parent.ResumeWithValue(results)
				}
			}

			if len(s) == 0 {
				parent.ResumeWithValue(results)
				return
			}

			for i, c := range s {
				k.Execute(c).Observe(ObserverFuncs{
					Success: func(_ *Strand, v any) {
						results[i] = v
						settleOne()
					},
					Failure: func(_ *Strand, err error) {
						if firstErr == nil {
							firstErr = err
						}
						settleOne()
					},
					Terminated: func(child *Strand) {
						if firstErr == nil {
							firstErr = &TerminatedError{Strand: child}
						}
						settleOne()
					},
				})
			}
		}))
	})
}
