package stream

import "context"

// CombineLatest3 emits fn(a, b, c) over the most recent value of each input
// whenever any input emits, once all three have emitted at least once.
//
// The output closes when ctx is done or when every input has closed. An input
// that closes keeps contributing its last value.
func CombineLatest3[A, B, C, R any](
	ctx context.Context,
	as <-chan A,
	bs <-chan B,
	cs <-chan C,
	fn func(A, B, C) R,
) <-chan R {
	out := make(chan R, 1)

	go func() {
		defer close(out)

		var (
			a          A
			b          B
			c          C
			hasA, hasB bool
			hasC       bool
		)

		for as != nil || bs != nil || cs != nil {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-as:
				if !ok {
					as = nil
					continue
				}
				a, hasA = v, true
			case v, ok := <-bs:
				if !ok {
					bs = nil
					continue
				}
				b, hasB = v, true
			case v, ok := <-cs:
				if !ok {
					cs = nil
					continue
				}
				c, hasC = v, true
			}

			if hasA && hasB && hasC {
				Offer(out, fn(a, b, c))
			}
		}
	}()

	return out
}
