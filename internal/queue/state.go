package queue

import (
	"encoding/json"
	"strings"
)

// State is the playback state machine position.
type State int

const (
	StateEmpty State = iota
	StatePending
	StatePlaying
	StatePaused
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StatePending:
		return "TransitionPending"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// Cycle advances off → all → one → off.
func (m RepeatMode) Cycle() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode reads the persisted form; anything unknown is off.
func ParseRepeatMode(s string) RepeatMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}

func (m RepeatMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *RepeatMode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*m = ParseRepeatMode(s)
	return nil
}
