package analyzer

import (
	"mailscope/internal/models"
)

// Persona segmentation. The segment decision is an ordered rule chain:
// rules are evaluated top to bottom and the first match wins, so the
// tie-break order is visible as data.

type segmentRule struct {
	segment string
	match   func(avatar models.AvatarProfile, metrics models.StructuralMetrics, presence models.ServicePresence) bool
}

var segmentRules = []segmentRule{
	{"Tech Professional", func(a models.AvatarProfile, m models.StructuralMetrics, p models.ServicePresence) bool {
		return (p.Has("github") || p.Has("linkedin")) && m.UsernamePattern == models.PatternProfessional
	}},
	{"B2B Decision Maker", func(a models.AvatarProfile, m models.StructuralMetrics, p models.ServicePresence) bool {
		return m.DomainType == models.DomainCorporate && p.Has("linkedin") && !genericUsername(m.Username)
	}},
	{"Digital Entertainment Consumer", func(a models.AvatarProfile, m models.StructuralMetrics, p models.ServicePresence) bool {
		return (p.Has("netflix") || p.Has("spotify")) &&
			(p.Has("steam") || p.Has("playstation") || p.Has("xbox"))
	}},
	{"Early Adopter", func(a models.AvatarProfile, m models.StructuralMetrics, p models.ServicePresence) bool {
		return a.Exists && p.MatchCount > 5
	}},
	{"Social Media Enthusiast", func(a models.AvatarProfile, m models.StructuralMetrics, p models.ServicePresence) bool {
		return p.Has("twitter") || p.Has("instagram")
	}},
	{"Professional", func(a models.AvatarProfile, m models.StructuralMetrics, p models.ServicePresence) bool {
		return m.UsernamePattern == models.PatternProfessional || m.DomainType == models.DomainCorporate
	}},
	{"Digital Consumer", func(a models.AvatarProfile, m models.StructuralMetrics, p models.ServicePresence) bool {
		return m.DomainType == models.DomainPersonal
	}},
}

// GeneralConsumer is the fallback segment when no rule matches.
const GeneralConsumer = "General Consumer"

var segmentInterests = map[string][]string{
	"Tech Professional":              {"Technology", "Professional Development", "SaaS", "Innovation"},
	"B2B Decision Maker":             {"Business Software", "Enterprise Solutions", "Productivity", "Analytics"},
	"Digital Entertainment Consumer": {"Streaming", "Gaming", "Digital Media", "Entertainment"},
	"Early Adopter":                  {"New Technology", "Digital Services", "Innovation", "Beta Testing"},
	"Social Media Enthusiast":        {"Social Networks", "Content Creation", "Digital Marketing", "Trends"},
	"Professional":                   {"Career Development", "Business Tools", "Networking"},
}

var defaultInterests = []string{"General Technology", "Digital Services"}

// serviceInterests append on top of the segment list when the service is
// confirmed, in this order.
var serviceInterests = []struct {
	service  string
	interest string
}{
	{"netflix", "Video Streaming"},
	{"spotify", "Music Streaming"},
	{"github", "Software Development"},
	{"steam", "PC Gaming"},
}

var segmentEngagementPoints = map[string]int{
	"Tech Professional":  30,
	"B2B Decision Maker": 30,
	"Early Adopter":      25,
	"Professional":       20,
}

var segmentRecommendations = map[string][]string{
	"Tech Professional": {
		"Target with SaaS and developer tools",
		"Focus on technical content and case studies",
		"Emphasize ROI and productivity gains",
	},
	"B2B Decision Maker": {
		"Present enterprise-level solutions",
		"Offer personalized demos and consultations",
		"Focus on business value and scalability",
	},
	"Digital Entertainment Consumer": {
		"Promote entertainment and lifestyle products",
		"Use engaging, visual content",
		"Leverage social proof and reviews",
	},
	"Early Adopter": {
		"Offer early access to new features",
		"Invite to beta programs",
		"Emphasize innovation and cutting-edge technology",
	},
	"Professional": {
		"Focus on career advancement and productivity",
		"Offer professional development resources",
		"Emphasize time-saving benefits",
	},
}

var defaultRecommendations = []string{
	"Use clear, benefit-focused messaging",
	"Provide educational content",
	"Build trust through testimonials",
}

// BuildPersona derives a marketing persona from the collected signals.
// Deterministic given identical inputs.
func BuildPersona(avatar models.AvatarProfile, metrics models.StructuralMetrics, presence models.ServicePresence) models.PersonaAssessment {
	segment := determineSegment(avatar, metrics, presence)

	return models.PersonaAssessment{
		Segment:         segment,
		Interests:       determineInterests(segment, presence),
		EngagementLevel: engagementLevel(segment, metrics, presence, avatar),
		Confidence:      personaConfidence(avatar, metrics, presence),
		Recommendations: recommendationsFor(segment),
	}
}

func determineSegment(avatar models.AvatarProfile, metrics models.StructuralMetrics, presence models.ServicePresence) string {
	for _, rule := range segmentRules {
		if rule.match(avatar, metrics, presence) {
			return rule.segment
		}
	}
	return GeneralConsumer
}

func determineInterests(segment string, presence models.ServicePresence) []string {
	base, ok := segmentInterests[segment]
	if !ok {
		base = defaultInterests
	}
	interests := append([]string(nil), base...)

	for _, si := range serviceInterests {
		if presence.Has(si.service) {
			interests = append(interests, si.interest)
		}
	}
	return interests
}

func engagementLevel(segment string, metrics models.StructuralMetrics, presence models.ServicePresence, avatar models.AvatarProfile) models.EngagementLevel {
	score, ok := segmentEngagementPoints[segment]
	if !ok {
		score = 10
	}

	score += metrics.QualityScore / 5
	score += presence.MatchCount * 5
	if avatar.Exists {
		score += 15
	}

	switch {
	case score >= 60:
		return models.EngagementHigh
	case score >= 35:
		return models.EngagementMedium
	default:
		return models.EngagementLow
	}
}

func personaConfidence(avatar models.AvatarProfile, metrics models.StructuralMetrics, presence models.ServicePresence) int {
	confidence := 50

	if avatar.Exists {
		confidence += 15
	}
	if metrics.QualityScore > 70 {
		confidence += 15
	}
	if presence.MatchCount > 0 {
		bonus := presence.MatchCount * 4
		if bonus > 20 {
			bonus = 20
		}
		confidence += bonus
	}

	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

func recommendationsFor(segment string) []string {
	if recs, ok := segmentRecommendations[segment]; ok {
		return append([]string(nil), recs...)
	}
	return append([]string(nil), defaultRecommendations...)
}

// genericUsername flags usernames that carry no personal identity signal:
// long digit runs or very short handles.
func genericUsername(username string) bool {
	if len(username) < 4 {
		return true
	}
	digits := 0
	for _, r := range username {
		if r >= '0' && r <= '9' {
			digits++
			if digits >= 3 {
				return true
			}
		} else {
			digits = 0
		}
	}
	return false
}
