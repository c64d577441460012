package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// replay feeds calls to b, where f is a failed primary call and s a successful one.
func replay(b *Breaker, calls string) (useFallback bool, last StateChange) {
	for _, c := range calls {
		switch c {
		case 'f':
			useFallback, last = b.RecordFailure()
		case 's':
			var usePrimary bool
			usePrimary, last = b.RecordSuccess()
			useFallback = !usePrimary
		}
	}
	return useFallback, last
}

func TestBreaker_Sequences(t *testing.T) {
	tests := []struct {
		name         string
		opts         []Option
		calls        string
		wantOpen     bool
		wantFallback bool
		wantChange   StateChange
	}{
		{name: "defaults tolerate four failures", calls: "ffff", wantOpen: false},
		{name: "defaults open on fifth failure", calls: "fffff", wantOpen: true, wantFallback: true, wantChange: StateChange{Opened: true}},
		{name: "success clears failure streak", opts: []Option{WithFailureThreshold(3)}, calls: "ffsff", wantOpen: false},
		{name: "streak after reset opens", opts: []Option{WithFailureThreshold(3)}, calls: "ffsfff", wantOpen: true, wantFallback: true, wantChange: StateChange{Opened: true}},
		{name: "open stays on fallback without new transition", opts: []Option{WithFailureThreshold(1)}, calls: "ff", wantOpen: true, wantFallback: true},
		{name: "half way to closing still falls back", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)}, calls: "fs", wantOpen: true, wantFallback: true},
		{name: "closes after success threshold", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)}, calls: "fss", wantOpen: false, wantChange: StateChange{Closed: true}},
		{name: "failure while open restarts recovery", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(3)}, calls: "fssfss", wantOpen: true, wantFallback: true},
		{name: "recovers after restarted streak", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(3)}, calls: "fssfsss", wantOpen: false, wantChange: StateChange{Closed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("expansion-cache", tt.opts...)
			fallback, change := replay(b, tt.calls)
			assert.Equal(t, tt.wantOpen, b.IsOpen())
			assert.Equal(t, tt.wantFallback, fallback)
			assert.Equal(t, tt.wantChange, change)
		})
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := New("expansion-cache", WithFailureThreshold(1))
	assert.Equal(t, "expansion-cache", b.Name())
	assert.Equal(t, StateClosed, b.State())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.Equal(t, StateChange{}, change)
}
