package analyzer

import (
	"mailscope/internal/models"
)

var genericSecurityRecommendations = []string{
	"Maintain good email security practices",
	"Use strong, unique passwords",
	"Enable two-factor authentication where available",
}

// ScoreSecurity converts structural metrics and service presence into a
// 0-100 risk score with factors and recommendations. Deterministic; the
// recommendation list is never empty.
func ScoreSecurity(metrics models.StructuralMetrics, presence models.ServicePresence) models.SecurityAssessment {
	score := 50
	var riskFactors []string
	var recommendations []string

	score += (metrics.ProviderReputation - 50) / 2
	if metrics.ProviderReputation > 0 && metrics.ProviderReputation < 60 {
		riskFactors = append(riskFactors, "Low-reputation email provider")
		recommendations = append(recommendations, "Consider using a more established email provider")
	}

	switch metrics.DomainType {
	case models.DomainDisposable:
		score -= 30
		riskFactors = append(riskFactors, "Disposable email address detected")
		recommendations = append(recommendations, "Disposable emails pose high security risks")
	case models.DomainCorporate:
		score += 15
		recommendations = append(recommendations, "Corporate email shows good security practices")
	case models.DomainEdu:
		score += 10
	}

	if metrics.UsernamePattern == models.PatternProfessional {
		score += 10
	}

	// Linked-account spread: many confirmed services means a wide attack
	// surface; a moderate count is only informational.
	if presence.MatchCount > 15 {
		score -= 10
		riskFactors = append(riskFactors, "High number of linked services increases attack surface")
		recommendations = append(recommendations, "Consider using different email addresses for different service categories")
	} else if presence.MatchCount > 8 {
		riskFactors = append(riskFactors, "Moderate number of linked services")
		recommendations = append(recommendations, "Monitor account activity regularly")
	}

	score += (metrics.QualityScore - 50) / 5

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var riskLevel models.RiskLevel
	switch {
	case score >= 70:
		riskLevel = models.RiskLow
	case score >= 40:
		riskLevel = models.RiskMedium
	default:
		riskLevel = models.RiskHigh
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, genericSecurityRecommendations...)
	}

	return models.SecurityAssessment{
		Score:           score,
		RiskLevel:       riskLevel,
		RiskFactors:     riskFactors,
		Recommendations: recommendations,
	}
}
