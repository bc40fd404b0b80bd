package report

import (
	"mailscope/internal/models"
)

// BatchSummary aggregates a completed batch for the report header.
type BatchSummary struct {
	TotalAnalyzed   int            `json:"total_analyzed"`
	AvatarsFound    int            `json:"avatars_found"`
	AvgQualityScore float64        `json:"avg_quality_score"`
	AvgSecurityScore float64       `json:"avg_security_score"`
	HighRiskCount   int            `json:"high_risk_count"`
	DomainTypes     map[string]int `json:"domain_types"`
	RiskLevels      map[string]int `json:"risk_levels"`
	Segments        map[string]int `json:"segments"`
}

// Summarize computes batch statistics in a single pass over the profiles.
func Summarize(profiles []models.Profile) BatchSummary {
	summary := BatchSummary{
		TotalAnalyzed: len(profiles),
		DomainTypes:   make(map[string]int),
		RiskLevels:    make(map[string]int),
		Segments:      make(map[string]int),
	}

	var qualitySum, securitySum, securityCount int
	for _, p := range profiles {
		if p.Avatar.Exists {
			summary.AvatarsFound++
		}
		qualitySum += p.Metrics.QualityScore
		if p.Metrics.DomainType != "" {
			summary.DomainTypes[string(p.Metrics.DomainType)]++
		}
		if p.Persona.Segment != "" {
			summary.Segments[p.Persona.Segment]++
		}
		if p.Security != nil {
			summary.RiskLevels[string(p.Security.RiskLevel)]++
			securitySum += p.Security.Score
			securityCount++
			if p.Security.RiskLevel == models.RiskHigh {
				summary.HighRiskCount++
			}
		}
	}

	if len(profiles) > 0 {
		summary.AvgQualityScore = float64(qualitySum) / float64(len(profiles))
	}
	if securityCount > 0 {
		summary.AvgSecurityScore = float64(securitySum) / float64(securityCount)
	}
	return summary
}
