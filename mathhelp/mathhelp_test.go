package mathhelp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPow2(t *testing.T) {
	tests := []struct {
		n    uint
		want uint
	}{
		{n: 0, want: 1},
		{n: 1, want: 2},
		{n: 5, want: 32},
		{n: 12, want: 4096},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf(`Pow2(%v)`, tt.n), func(t *testing.T) {
			require.Equal(t, tt.want, Pow2(tt.n))
		})
	}
}

func TestBetweenInc(t *testing.T) {
	tests := []struct {
		f, p, q int64
		want    bool
	}{
		{f: 5, p: 0, q: 10, want: true},
		{f: 5, p: 10, q: 0, want: true},
		{f: 0, p: 0, q: 10, want: true},
		{f: 10, p: 0, q: 10, want: true},
		{f: -1, p: 0, q: 10, want: false},
		{f: 11, p: 10, q: 0, want: false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf(`BetweenInc(%v, %v, %v)`, tt.f, tt.p, tt.q), func(t *testing.T) {
			require.Equal(t, tt.want, BetweenInc(tt.f, tt.p, tt.q))
		})
	}
	require.True(t, BetweenInc(1.5, -2.0, 2.0))
	require.False(t, BetweenInc(-2.1, -2.0, 2.0))
}

func TestClip(t *testing.T) {
	require.Equal(t, 0.0, Clip(-1.0, 0.0, 10.0))
	require.Equal(t, 10.0, Clip(11.0, 0.0, 10.0))
	require.Equal(t, 5.0, Clip(5.0, 0.0, 10.0))
}
