package models

import (
	"strings"
	"time"
)

type DomainType string
type UsernamePattern string
type EngagementLevel string
type RiskLevel string

const (
	DomainPersonal   DomainType = "PERSONAL"
	DomainCorporate  DomainType = "CORPORATE"
	DomainEdu        DomainType = "EDU"
	DomainDisposable DomainType = "DISPOSABLE"

	PatternProfessional UsernamePattern = "PROFESSIONAL"
	PatternNumeric      UsernamePattern = "NUMERIC"
	PatternSimple       UsernamePattern = "SIMPLE"
	PatternCasual       UsernamePattern = "CASUAL"
	PatternUnknown      UsernamePattern = "UNKNOWN"

	EngagementHigh   EngagementLevel = "HIGH"
	EngagementMedium EngagementLevel = "MEDIUM"
	EngagementLow    EngagementLevel = "LOW"

	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AvatarProfile is the public avatar lookup result for an email address.
// Exists=false is a normal terminal state, not an error.
type AvatarProfile struct {
	Exists         bool     `json:"exists"`
	DisplayName    string   `json:"display_name,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	LinkedAccounts []string `json:"linked_accounts,omitempty"`
}

// StructuralMetrics is derived purely from the address string, no I/O.
// A malformed address yields the zero value.
type StructuralMetrics struct {
	Username           string          `json:"username"`
	Domain             string          `json:"domain"`
	DomainType         DomainType      `json:"domain_type"`
	UsernamePattern    UsernamePattern `json:"username_pattern"`
	ProviderReputation int             `json:"provider_reputation"`
	QualityScore       int             `json:"quality_score"`
}

// ServicePresence records per-service account existence.
// MatchCount always equals the number of true entries in Services; all
// mutation goes through Set so the invariant holds at every point, not
// just after a final recompute.
type ServicePresence struct {
	Services   map[string]bool `json:"services"`
	MatchCount int             `json:"match_count"`
	Categories []string        `json:"categories"`
}

func NewServicePresence() ServicePresence {
	return ServicePresence{Services: make(map[string]bool)}
}

func (p *ServicePresence) Set(name string, present bool) {
	if p.Services == nil {
		p.Services = make(map[string]bool)
	}
	name = strings.ToLower(name)
	if p.Services[name] {
		p.MatchCount--
	}
	p.Services[name] = present
	if present {
		p.MatchCount++
	}
}

func (p *ServicePresence) Has(name string) bool {
	return p.Services[strings.ToLower(name)]
}

type PersonaAssessment struct {
	Segment         string          `json:"segment"`
	Interests       []string        `json:"interests"`
	EngagementLevel EngagementLevel `json:"engagement_level"`
	Confidence      int             `json:"confidence"`
	Recommendations []string        `json:"recommendations"`
}

type SecurityAssessment struct {
	Score           int       `json:"score"`
	RiskLevel       RiskLevel `json:"risk_level"`
	RiskFactors     []string  `json:"risk_factors"`
	Recommendations []string  `json:"recommendations"`
}

// Profile is the complete analysis result for one email address. It is
// built once per analysis call and never mutated afterwards. Security is
// nil when the scoring stage failed; Email and Metrics are always
// populated, even on a degraded analysis.
type Profile struct {
	Email      string              `json:"email"`
	Avatar     AvatarProfile       `json:"avatar"`
	Metrics    StructuralMetrics   `json:"metrics"`
	Presence   ServicePresence     `json:"presence"`
	Persona    PersonaAssessment   `json:"persona"`
	Security   *SecurityAssessment `json:"security,omitempty"`
	AnalyzedAt time.Time           `json:"analyzed_at"`
}
