package analyzer

import (
	"context"
	"log"
	"sync"
	"time"

	"mailscope/internal/lookup"
	"mailscope/internal/models"
)

// AvatarSource and PresenceSource are the collector contracts the engine
// depends on. Both guarantee a usable default result instead of an error.
type AvatarSource interface {
	Collect(ctx context.Context, email string) models.AvatarProfile
}

type PresenceSource interface {
	CheckServices(ctx context.Context, email string) models.ServicePresence
}

// Engine fans a batch of emails out to per-email analysis and fans the
// results back into an ordered collection. Per-task failure is isolated:
// AnalyzeBatch always returns one profile per input email, in input
// order, no matter what the collectors or scorers do.
type Engine struct {
	avatars  AvatarSource
	presence PresenceSource
	workers  int
}

// NewEngine builds an engine over the two I/O collectors. workers bounds
// batch concurrency and is independent of batch size.
func NewEngine(avatars AvatarSource, presence PresenceSource, workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		avatars:  avatars,
		presence: presence,
		workers:  workers,
	}
}

// AnalyzeOne produces the full intelligence profile for a single email.
// It never fails: on an unexpected classification error the profile is
// returned without the affected assessment, and at minimum the email and
// its structural metrics are always populated.
func (e *Engine) AnalyzeOne(ctx context.Context, email string) models.Profile {
	profile := models.Profile{
		Email:      email,
		Metrics:    lookup.AnalyzePattern(email),
		Presence:   models.NewServicePresence(),
		AnalyzedAt: time.Now().UTC(),
	}

	// The three collectors are independent; run them concurrently. Each
	// already degrades to a default result on failure.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		profile.Avatar = e.collectAvatar(ctx, email)
	}()
	go func() {
		defer wg.Done()
		profile.Presence = e.collectPresence(ctx, email)
	}()
	wg.Wait()

	profile.Persona = e.buildPersona(profile)
	profile.Security = e.scoreSecurity(profile)

	return profile
}

// AnalyzeBatch analyzes every email concurrently on a bounded worker
// pool. The result slice has exactly len(emails) entries and preserves
// input order: each task writes to its own index, so completion order is
// irrelevant.
func (e *Engine) AnalyzeBatch(ctx context.Context, emails []string) []models.Profile {
	profiles := make([]models.Profile, len(emails))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.workers)

	for i, email := range emails {
		wg.Add(1)
		go func(idx int, addr string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			profiles[idx] = e.AnalyzeOne(ctx, addr)
		}(i, email)
	}

	wg.Wait()
	return profiles
}

// collectAvatar shields the engine from a panicking collector; the
// collectors already swallow ordinary failures themselves.
func (e *Engine) collectAvatar(ctx context.Context, email string) (avatar models.AvatarProfile) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN-ANALYZE] avatar collection panicked for %s: %v", email, r)
			avatar = models.AvatarProfile{}
		}
	}()
	if e.avatars == nil {
		return models.AvatarProfile{}
	}
	return e.avatars.Collect(ctx, email)
}

func (e *Engine) collectPresence(ctx context.Context, email string) (presence models.ServicePresence) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN-ANALYZE] presence collection panicked for %s: %v", email, r)
			presence = models.NewServicePresence()
		}
	}()
	if e.presence == nil {
		return models.NewServicePresence()
	}
	return e.presence.CheckServices(ctx, email)
}

func (e *Engine) buildPersona(p models.Profile) (persona models.PersonaAssessment) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN-ANALYZE] persona classification panicked for %s: %v", p.Email, r)
			persona = models.PersonaAssessment{Segment: GeneralConsumer}
		}
	}()
	return BuildPersona(p.Avatar, p.Metrics, p.Presence)
}

// scoreSecurity returns nil when scoring fails; the profile is still
// delivered without the security assessment.
func (e *Engine) scoreSecurity(p models.Profile) (assessment *models.SecurityAssessment) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN-ANALYZE] security scoring panicked for %s: %v", p.Email, r)
			assessment = nil
		}
	}()
	sec := ScoreSecurity(p.Metrics, p.Presence)
	return &sec
}
