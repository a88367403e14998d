package replay

import (
	"testing"
	"time"
)

func TestScriptsLoad(t *testing.T) {
	names, err := Scripts()
	if err != nil {
		t.Fatalf("Scripts() error = %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected embedded scripts")
	}

	for _, name := range names {
		s, err := LoadScript(name)
		if err != nil {
			t.Errorf("LoadScript(%s) error = %v", name, err)
			continue
		}
		if s.Name != name {
			t.Errorf("script %s has name %q", name, s.Name)
		}
		if len(s.Steps) == 0 {
			t.Errorf("script %s has no steps", name)
		}
	}
}

func TestLoadScriptMissing(t *testing.T) {
	if _, err := LoadScript("nope"); err == nil {
		t.Error("expected error for missing script")
	}
}

func TestStepHands(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s := Step{TMs: 250, X: 0.2}
	if got := s.At(start); !got.Equal(start.Add(250 * time.Millisecond)) {
		t.Errorf("At() = %v", got)
	}
	if hands := s.Hands(); len(hands) != 1 {
		t.Errorf("expected one hand, got %d", len(hands))
	}
	if hands := (Step{Absent: true}).Hands(); hands != nil {
		t.Errorf("expected no hands, got %d", len(hands))
	}
}

func TestPlay(t *testing.T) {
	s, err := LoadScript("slide_left")
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var times []time.Time
	s.Play(start, func(step Step, at time.Time) { times = append(times, at) })

	if len(times) != len(s.Steps) {
		t.Fatalf("played %d steps, want %d", len(times), len(s.Steps))
	}
	if !times[0].Equal(start) {
		t.Errorf("first step at %v, want %v", times[0], start)
	}
	last := s.Steps[len(s.Steps)-1]
	if !last.Absent {
		t.Error("slide_left ends with the hand leaving")
	}
}
