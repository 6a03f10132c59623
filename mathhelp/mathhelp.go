package mathhelp

import (
	"golang.org/x/exp/constraints"
)

func Pow2(n uint) uint {
	return 1 << n
}

// BetweenInc reports whether f lies in the closed interval spanned by p and q,
// regardless of the order of p and q.
func BetweenInc[T constraints.Ordered](f, p, q T) bool {
	if p <= q {
		return p <= f && f <= q
	}
	return q <= f && f <= p
}

// Clip limits f to the closed interval [lo, hi].
func Clip[T constraints.Ordered](f, lo, hi T) T {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
