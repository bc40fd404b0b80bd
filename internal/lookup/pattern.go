package lookup

import (
	"regexp"
	"strings"

	"mailscope/internal/models"
)

// Structural analysis of an email address: pure, deterministic, no I/O.
// The username classification is an ordered (predicate, outcome) chain so
// the tie-break order is data, not control flow buried in conditionals.

var (
	professionalRe = regexp.MustCompile(`^[a-z]+\.[a-z]+$`)
	numericRunRe   = regexp.MustCompile(`\d{3,}`)
	alphaOnlyRe    = regexp.MustCompile(`^[a-z]+$`)
)

type usernameRule struct {
	pattern models.UsernamePattern
	match   func(username string) bool
}

// usernameRules are evaluated in order; the first match wins.
var usernameRules = []usernameRule{
	{models.PatternProfessional, func(u string) bool { return professionalRe.MatchString(u) }},
	{models.PatternNumeric, func(u string) bool { return numericRunRe.MatchString(u) }},
	{models.PatternSimple, func(u string) bool { return len(u) < 6 && alphaOnlyRe.MatchString(u) }},
	{models.PatternCasual, func(string) bool { return true }},
}

var domainTypeBonus = map[models.DomainType]int{
	models.DomainCorporate:  20,
	models.DomainEdu:        15,
	models.DomainPersonal:   10,
	models.DomainDisposable: -30,
}

var usernamePatternBonus = map[models.UsernamePattern]int{
	models.PatternProfessional: 20,
	models.PatternSimple:       10,
	models.PatternCasual:       5,
	models.PatternNumeric:      -5,
}

// AnalyzePattern derives structural metrics from the address string.
// Malformed input (no @, wrong part count) returns the zero metrics
// rather than an error.
func AnalyzePattern(email string) models.StructuralMetrics {
	var m models.StructuralMetrics

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return m
	}

	m.Username = parts[0]
	m.Domain = parts[1]
	m.DomainType = ClassifyDomain(m.Domain)
	m.UsernamePattern = classifyUsername(m.Username)
	m.ProviderReputation = ProviderReputation(m.Domain)
	m.QualityScore = qualityScore(m)

	return m
}

func classifyUsername(username string) models.UsernamePattern {
	if username == "" {
		return models.PatternUnknown
	}
	username = strings.ToLower(username)
	for _, rule := range usernameRules {
		if rule.match(username) {
			return rule.pattern
		}
	}
	return models.PatternUnknown
}

func qualityScore(m models.StructuralMetrics) int {
	score := 50
	score += domainTypeBonus[m.DomainType]
	score += usernamePatternBonus[m.UsernamePattern]
	score += (m.ProviderReputation - 50) / 5
	return clamp(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
