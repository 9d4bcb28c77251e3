package altfsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayAlwaysReachesPlaying(t *testing.T) {
	for _, start := range []State{Initial, Playing, Paused, Stopped} {
		s := &Source{State: start}
		assert.Equal(t, Playing, s.Apply(Play))
	}
}

func TestPauseOnlyTakesEffectFromPlaying(t *testing.T) {
	s := &Source{State: Playing}
	assert.Equal(t, Paused, s.Apply(Pause))

	s = &Source{State: Initial}
	assert.Equal(t, Initial, s.Apply(Pause))

	s = &Source{State: Stopped}
	assert.Equal(t, Stopped, s.Apply(Pause))
}

func TestRewindAlwaysReachesInitial(t *testing.T) {
	for _, start := range []State{Initial, Playing, Paused, Stopped} {
		s := &Source{State: start}
		assert.Equal(t, Initial, s.Apply(Rewind))
	}
}
