package lexicon

import (
	"strings"
	"testing"
)

func TestStarters(t *testing.T) {
	l := Default()

	tests := []struct {
		name string
		mode string
	}{
		{"academic mode", "academic"},
		{"casual mode", "casual"},
		{"conversational mode", "conversational"},
		{"unknown mode falls back", "pirate"},
		{"empty mode falls back", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starters := l.Starters(tt.mode)
			if len(starters) == 0 {
				t.Errorf("Starters(%q) returned no candidates", tt.mode)
			}
		})
	}
}

func TestTransitions(t *testing.T) {
	l := Default()

	for _, rel := range []string{RelContinuation, RelContrast, RelCausation, RelElaboration} {
		if len(l.Transitions(rel)) == 0 {
			t.Errorf("no transitions for relation %q", rel)
		}
	}

	if got := l.Transitions("nonsense"); len(got) != 0 {
		t.Errorf("expected no transitions for unknown relation, got %v", got)
	}

	all := l.AllTransitions()
	want := len(l.Transitions(RelContinuation)) + len(l.Transitions(RelContrast)) +
		len(l.Transitions(RelCausation)) + len(l.Transitions(RelElaboration))
	if len(all) != want {
		t.Errorf("AllTransitions returned %d phrases, want %d", len(all), want)
	}
}

func TestCategory(t *testing.T) {
	l := Default()

	for _, name := range []string{"hedges", "fillers", "personal_frames", "discourse_markers"} {
		if len(l.Category(name)) == 0 {
			t.Errorf("category %q is empty", name)
		}
	}

	if got := l.Category("no_such_category"); len(got) != 0 {
		t.Errorf("unknown category should be empty, got %v", got)
	}
}

func TestContractionsArePaired(t *testing.T) {
	l := Default()

	for _, pair := range l.Contractions() {
		if pair.Formal == "" || pair.Informal == "" {
			t.Errorf("incomplete contraction pair: %+v", pair)
		}
		if !strings.Contains(pair.Informal, "'") {
			t.Errorf("informal form %q is not a contraction", pair.Informal)
		}
	}
}

func TestIsTransitionStart(t *testing.T) {
	l := Default()

	tests := []struct {
		name     string
		sentence string
		want     bool
	}{
		{"transition phrase", "However, the results differ.", true},
		{"transition lowercase", "however, the results differ.", true},
		{"discourse marker", "Well, that went badly.", true},
		{"plain sentence", "The results differ.", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.IsTransitionStart(tt.sentence); got != tt.want {
				t.Errorf("IsTransitionStart(%q) = %v, want %v", tt.sentence, got, tt.want)
			}
		})
	}
}
