package analyzer

import (
	"context"
	"fmt"
	"testing"

	"mailscope/internal/models"
)

type stubAvatars struct {
	profile  models.AvatarProfile
	panicOn  string
	panicAll bool
}

func (s stubAvatars) Collect(ctx context.Context, email string) models.AvatarProfile {
	if s.panicAll || (s.panicOn != "" && email == s.panicOn) {
		panic("avatar backend unavailable")
	}
	return s.profile
}

type stubPresence struct {
	confirmed []string
	panicAll  bool
}

func (s stubPresence) CheckServices(ctx context.Context, email string) models.ServicePresence {
	if s.panicAll {
		panic("presence backend unavailable")
	}
	p := models.NewServicePresence()
	for _, name := range s.confirmed {
		p.Set(name, true)
	}
	return p
}

func TestAnalyzeOne(t *testing.T) {
	engine := NewEngine(
		stubAvatars{profile: models.AvatarProfile{Exists: true, DisplayName: "John Doe"}},
		stubPresence{confirmed: []string{"github", "linkedin"}},
		4,
	)

	profile := engine.AnalyzeOne(context.Background(), "john.doe@gmail.com")

	if profile.Email != "john.doe@gmail.com" {
		t.Errorf("Email = %q", profile.Email)
	}
	if !profile.Avatar.Exists {
		t.Error("Avatar.Exists = false, want true")
	}
	if profile.Metrics.QualityScore != 89 {
		t.Errorf("QualityScore = %d, want 89", profile.Metrics.QualityScore)
	}
	if profile.Presence.MatchCount != 2 {
		t.Errorf("Presence.MatchCount = %d, want 2", profile.Presence.MatchCount)
	}
	if profile.Persona.Segment != "Tech Professional" {
		t.Errorf("Segment = %q, want Tech Professional", profile.Persona.Segment)
	}
	if profile.Security == nil {
		t.Fatal("Security = nil, want an assessment")
	}
	if profile.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt not set")
	}
}

func TestAnalyzeOneNilSources(t *testing.T) {
	engine := NewEngine(nil, nil, 4)

	profile := engine.AnalyzeOne(context.Background(), "someone@example.com")

	if profile.Avatar.Exists {
		t.Error("Avatar.Exists = true with no collector")
	}
	if profile.Presence.Services == nil {
		t.Error("Presence.Services = nil, want an initialized map")
	}
	if profile.Metrics.Domain != "example.com" {
		t.Errorf("Metrics.Domain = %q, metrics must be populated regardless", profile.Metrics.Domain)
	}
	if profile.Security == nil {
		t.Error("Security = nil, want an assessment from structural signals alone")
	}
}

func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	var emails []string
	for i := 0; i < 25; i++ {
		emails = append(emails, fmt.Sprintf("user%02d@example.com", i))
	}

	engine := NewEngine(stubAvatars{}, stubPresence{}, 4)
	profiles := engine.AnalyzeBatch(context.Background(), emails)

	if len(profiles) != len(emails) {
		t.Fatalf("got %d profiles, want %d", len(profiles), len(emails))
	}
	for i, p := range profiles {
		if p.Email != emails[i] {
			t.Errorf("profiles[%d].Email = %q, want %q", i, p.Email, emails[i])
		}
	}
}

// A collector blowing up on one email must not affect its neighbors, and
// the failed email still gets a profile with its structural metrics.
func TestAnalyzeBatchIsolatesFailures(t *testing.T) {
	emails := []string{"first@gmail.com", "second@gmail.com", "third@gmail.com"}

	engine := NewEngine(
		stubAvatars{profile: models.AvatarProfile{Exists: true}, panicOn: "second@gmail.com"},
		stubPresence{},
		2,
	)
	profiles := engine.AnalyzeBatch(context.Background(), emails)

	if len(profiles) != 3 {
		t.Fatalf("got %d profiles, want 3", len(profiles))
	}
	for i, p := range profiles {
		if p.Email != emails[i] {
			t.Errorf("profiles[%d].Email = %q, want %q", i, p.Email, emails[i])
		}
		if p.Metrics.Domain != "gmail.com" {
			t.Errorf("profiles[%d] missing structural metrics", i)
		}
		if p.Security == nil {
			t.Errorf("profiles[%d].Security = nil, want an assessment", i)
		}
	}

	if !profiles[0].Avatar.Exists || !profiles[2].Avatar.Exists {
		t.Error("healthy lookups lost their avatar result")
	}
	if profiles[1].Avatar.Exists {
		t.Error("profiles[1].Avatar.Exists = true, want the degraded default")
	}
}

// Even with the avatar backend down for every address, the batch comes
// back complete with structural metrics intact.
func TestAnalyzeBatchAvatarDownForAll(t *testing.T) {
	emails := []string{"first@gmail.com", "second@yopmail.com", "third@acme.io"}

	engine := NewEngine(stubAvatars{panicAll: true}, stubPresence{}, 2)
	profiles := engine.AnalyzeBatch(context.Background(), emails)

	if len(profiles) != 3 {
		t.Fatalf("got %d profiles, want 3", len(profiles))
	}
	for i, p := range profiles {
		if p.Email != emails[i] {
			t.Errorf("profiles[%d].Email = %q, want %q", i, p.Email, emails[i])
		}
		if p.Avatar.Exists {
			t.Errorf("profiles[%d].Avatar.Exists = true, want false", i)
		}
		if p.Metrics.Username == "" || p.Metrics.Domain == "" {
			t.Errorf("profiles[%d] missing structural metrics", i)
		}
	}
}

func TestAnalyzeOneAllCollectorsPanic(t *testing.T) {
	engine := NewEngine(
		stubAvatars{panicOn: "someone@example.com"},
		stubPresence{panicAll: true},
		4,
	)

	profile := engine.AnalyzeOne(context.Background(), "someone@example.com")

	if profile.Avatar.Exists {
		t.Error("Avatar.Exists = true, want degraded default")
	}
	if profile.Presence.MatchCount != 0 {
		t.Errorf("Presence.MatchCount = %d, want 0", profile.Presence.MatchCount)
	}
	if profile.Metrics.Domain != "example.com" {
		t.Error("structural metrics missing from degraded profile")
	}
	if profile.Persona.Segment == "" {
		t.Error("Persona.Segment empty, want a segment even when collection fails")
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	engine := NewEngine(stubAvatars{}, stubPresence{}, 4)
	profiles := engine.AnalyzeBatch(context.Background(), nil)
	if len(profiles) != 0 {
		t.Errorf("got %d profiles for an empty batch, want 0", len(profiles))
	}
}
