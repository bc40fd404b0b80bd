package report

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"mailscope/internal/models"
)

// RenderHTML produces a self-contained HTML report from a batch of
// profiles: a dashboard summary followed by one card per profile, in the
// order the profiles were analyzed. The output is deterministic for a
// given input.
func RenderHTML(profiles []models.Profile) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n<title>Email Intelligence Report</title>\n")
	b.WriteString("<style>\n")
	b.WriteString("body { font-family: -apple-system, 'Segoe UI', Arial, sans-serif; background: #f5f7fa; color: #2c3e50; margin: 0; }\n")
	b.WriteString(".container { max-width: 1200px; margin: 0 auto; padding: 20px; }\n")
	b.WriteString(".dashboard, .profile { background: #fff; padding: 24px; border-radius: 10px; margin-bottom: 20px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }\n")
	b.WriteString(".cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 16px; }\n")
	b.WriteString(".card { background: #667eea; color: #fff; padding: 20px; border-radius: 8px; text-align: center; }\n")
	b.WriteString(".card-value { font-size: 32px; font-weight: bold; }\n")
	b.WriteString(".risk-LOW { color: #27ae60; } .risk-MEDIUM { color: #f39c12; } .risk-HIGH { color: #e74c3c; }\n")
	b.WriteString(".tag { display: inline-block; background: #ecf0f1; padding: 3px 10px; border-radius: 10px; font-size: 13px; margin: 2px; }\n")
	b.WriteString("</style>\n</head>\n<body>\n<div class=\"container\">\n")

	if len(profiles) == 0 {
		b.WriteString("<div class=\"dashboard\"><h1>Email Intelligence Report</h1><p>No profiles analyzed.</p></div>\n")
		b.WriteString("</div>\n</body>\n</html>\n")
		return b.String()
	}

	writeDashboard(&b, Summarize(profiles))
	for _, p := range profiles {
		writeProfile(&b, p)
	}

	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String()
}

func writeDashboard(b *strings.Builder, s BatchSummary) {
	b.WriteString("<div class=\"dashboard\">\n<h1>Email Intelligence Report</h1>\n<div class=\"cards\">\n")
	writeCard(b, fmt.Sprintf("%d", s.TotalAnalyzed), "Emails Analyzed")
	writeCard(b, fmt.Sprintf("%d", s.AvatarsFound), "Avatar Profiles Found")
	writeCard(b, fmt.Sprintf("%.1f", s.AvgQualityScore), "Average Quality Score")
	writeCard(b, fmt.Sprintf("%d", s.HighRiskCount), "High Risk Addresses")
	b.WriteString("</div>\n</div>\n")
}

func writeCard(b *strings.Builder, value, label string) {
	fmt.Fprintf(b, "<div class=\"card\"><div class=\"card-value\">%s</div><div>%s</div></div>\n",
		html.EscapeString(value), html.EscapeString(label))
}

func writeProfile(b *strings.Builder, p models.Profile) {
	b.WriteString("<div class=\"profile\">\n")
	fmt.Fprintf(b, "<h2>%s</h2>\n", html.EscapeString(p.Email))
	fmt.Fprintf(b, "<p><strong>Segment:</strong> %s &middot; <strong>Engagement:</strong> %s &middot; <strong>Confidence:</strong> %d%%</p>\n",
		html.EscapeString(p.Persona.Segment), p.Persona.EngagementLevel, p.Persona.Confidence)
	fmt.Fprintf(b, "<p><strong>Domain:</strong> %s (%s) &middot; <strong>Username pattern:</strong> %s &middot; <strong>Quality:</strong> %d/100</p>\n",
		html.EscapeString(p.Metrics.Domain), p.Metrics.DomainType, p.Metrics.UsernamePattern, p.Metrics.QualityScore)

	if p.Avatar.Exists {
		name := p.Avatar.DisplayName
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(b, "<p><strong>Avatar:</strong> %s", html.EscapeString(name))
		if len(p.Avatar.LinkedAccounts) > 0 {
			fmt.Fprintf(b, " &middot; linked: %s", html.EscapeString(strings.Join(p.Avatar.LinkedAccounts, ", ")))
		}
		b.WriteString("</p>\n")
	}

	if p.Presence.MatchCount > 0 {
		fmt.Fprintf(b, "<p><strong>Confirmed services (%d):</strong> ", p.Presence.MatchCount)
		for _, name := range confirmedServices(p.Presence) {
			fmt.Fprintf(b, "<span class=\"tag\">%s</span>", html.EscapeString(name))
		}
		b.WriteString("</p>\n")
	}

	writeList(b, "Interests", p.Persona.Interests)
	writeList(b, "Marketing recommendations", p.Persona.Recommendations)

	if p.Security != nil {
		fmt.Fprintf(b, "<p><strong>Security score:</strong> <span class=\"risk-%s\">%d/100 (%s risk)</span></p>\n",
			p.Security.RiskLevel, p.Security.Score, p.Security.RiskLevel)
		writeList(b, "Risk factors", p.Security.RiskFactors)
		writeList(b, "Security recommendations", p.Security.Recommendations)
	} else {
		b.WriteString("<p><em>Security assessment unavailable for this address.</em></p>\n")
	}

	b.WriteString("</div>\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "<p><strong>%s:</strong></p>\n<ul>\n", html.EscapeString(title))
	for _, item := range items {
		fmt.Fprintf(b, "<li>%s</li>\n", html.EscapeString(item))
	}
	b.WriteString("</ul>\n")
}

// confirmedServices yields the confirmed services in alphabetical order
// so the artifact is deterministic regardless of map iteration.
func confirmedServices(p models.ServicePresence) []string {
	var confirmed []string
	for name, present := range p.Services {
		if present {
			confirmed = append(confirmed, name)
		}
	}
	sort.Strings(confirmed)
	return confirmed
}
