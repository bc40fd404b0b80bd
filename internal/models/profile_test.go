package models

import "testing"

// MatchCount must equal the number of true entries after any sequence of
// mutations, including repeated sets of the same service.
func TestServicePresenceSetInvariant(t *testing.T) {
	p := NewServicePresence()

	p.Set("github", true)
	p.Set("twitter", true)
	p.Set("netflix", false)
	if p.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2", p.MatchCount)
	}

	// Re-confirming a confirmed service must not double count.
	p.Set("github", true)
	if p.MatchCount != 2 {
		t.Errorf("MatchCount = %d after re-set, want 2", p.MatchCount)
	}

	// Flipping a confirmed service back to absent decrements.
	p.Set("twitter", false)
	if p.MatchCount != 1 {
		t.Errorf("MatchCount = %d after retraction, want 1", p.MatchCount)
	}

	// Flipping an absent service to absent again is a no-op.
	p.Set("netflix", false)
	if p.MatchCount != 1 {
		t.Errorf("MatchCount = %d, want 1", p.MatchCount)
	}

	trueCount := 0
	for _, present := range p.Services {
		if present {
			trueCount++
		}
	}
	if p.MatchCount != trueCount {
		t.Errorf("MatchCount = %d, map has %d confirmed entries", p.MatchCount, trueCount)
	}
}

func TestServicePresenceSetCaseFolding(t *testing.T) {
	p := NewServicePresence()
	p.Set("GitHub", true)

	if !p.Has("github") {
		t.Error("Has(github) = false after Set(GitHub)")
	}
	p.Set("github", true)
	if p.MatchCount != 1 {
		t.Errorf("MatchCount = %d, want 1 (names fold to one key)", p.MatchCount)
	}
}

func TestServicePresenceSetNilMap(t *testing.T) {
	var p ServicePresence
	p.Set("github", true)

	if !p.Has("github") || p.MatchCount != 1 {
		t.Errorf("presence = %+v, want github confirmed on a zero value", p)
	}
}
