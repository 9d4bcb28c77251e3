// Package altfsm implements the source playback state machine that
// spec §4.7 describes as a test oracle: it is never consulted by the
// recorder itself (which only observes whatever the real backend
// reports), but it is the transition table a fake backend drives its
// own state by, so the transitions the recorder/player roundtrip tests
// observe through that backend come from it.
package altfsm

// State is one of the four states AL_SOURCE_STATE reports.
type State int

const (
	Initial State = iota
	Playing
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Initial:
		return "INITIAL"
	case Playing:
		return "PLAYING"
	case Paused:
		return "PAUSED"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Call is one of the four source transport calls.
type Call int

const (
	Play Call = iota
	Pause
	Stop
	Rewind
)

// table[state][call] gives the next state. This is the transcription
// of the four-state, four-call table in the reference: Play always
// reaches PLAYING, Stop always reaches STOPPED, Rewind always reaches
// INITIAL; Pause only takes effect from PLAYING, and is otherwise a
// no-op.
var table = [4][4]State{
	Initial: {Play: Playing, Pause: Initial, Stop: Stopped, Rewind: Initial},
	Playing: {Play: Playing, Pause: Paused, Stop: Stopped, Rewind: Initial},
	Paused:  {Play: Playing, Pause: Paused, Stop: Stopped, Rewind: Initial},
	Stopped: {Play: Playing, Pause: Stopped, Rewind: Initial, Stop: Stopped},
}

// Source is the minimal state this oracle tracks.
type Source struct {
	State State
}

// Apply advances s according to the transition table and returns the
// resulting state.
func (s *Source) Apply(c Call) State {
	s.State = table[s.State][c]
	return s.State
}
