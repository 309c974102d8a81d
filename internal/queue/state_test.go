package queue

import (
	"encoding/json"
	"testing"
)

func TestRepeatModeCycle(t *testing.T) {
	m := RepeatOff
	want := []RepeatMode{RepeatAll, RepeatOne, RepeatOff}
	for _, w := range want {
		m = m.Cycle()
		if m != w {
			t.Fatalf("expected %s, got %s", w, m)
		}
	}
}

func TestParseRepeatModeUnknownIsOff(t *testing.T) {
	cases := map[string]RepeatMode{
		"all":     RepeatAll,
		" One ":   RepeatOne,
		"OFF":     RepeatOff,
		"":        RepeatOff,
		"forever": RepeatOff,
	}
	for in, want := range cases {
		if got := ParseRepeatMode(in); got != want {
			t.Errorf("ParseRepeatMode(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestRepeatModeJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(RepeatOne)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"one"` {
		t.Fatalf("expected \"one\", got %s", b)
	}

	var m RepeatMode
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m != RepeatOne {
		t.Errorf("round trip lost the mode: %s", m)
	}
}

func TestStateMarshalsAsName(t *testing.T) {
	b, err := json.Marshal(StatePending)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"TransitionPending"` {
		t.Errorf("expected \"TransitionPending\", got %s", b)
	}
}
