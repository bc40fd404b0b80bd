package lookup

import (
	"strings"

	"mailscope/internal/models"
)

// Canonical domain classification tables. Pattern analysis, persona rules
// and security scoring all read from here; nothing else keeps its own
// provider or disposable list.

// providerReputation scores known webmail providers 0-100.
var providerReputation = map[string]int{
	"gmail.com":      95,
	"outlook.com":    90,
	"icloud.com":     90,
	"hotmail.com":    85,
	"protonmail.com": 85,
	"yahoo.com":      75,
	"aol.com":        70,
	"mail.com":       65,
}

// disposableDomains are burner providers whose names carry no giveaway
// substring.
var disposableDomains = map[string]struct{}{
	"mailinator.com":    {},
	"yopmail.com":       {},
	"10minutemail.com":  {},
	"guerrillamail.com": {},
	"sharklasers.com":   {},
	"dispostable.com":   {},
}

// disposableIndicators catch the self-describing burner domains.
var disposableIndicators = []string{"temp", "disposable", "throwaway"}

// IsCommonProvider reports whether the domain is a well-known personal
// webmail provider.
func IsCommonProvider(domain string) bool {
	_, ok := providerReputation[strings.ToLower(domain)]
	return ok
}

// IsDisposableDomain reports whether the domain looks like a short-lived
// throwaway mailbox service.
func IsDisposableDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, ind := range disposableIndicators {
		if strings.Contains(domain, ind) {
			return true
		}
	}
	_, ok := disposableDomains[domain]
	return ok
}

// ClassifyDomain buckets a domain. The order matters: an .edu domain is
// EDU even if a later rule would also match.
func ClassifyDomain(domain string) models.DomainType {
	domain = strings.ToLower(domain)

	switch {
	case strings.HasSuffix(domain, ".edu") || strings.Contains(domain, ".edu."):
		return models.DomainEdu
	case IsCommonProvider(domain):
		return models.DomainPersonal
	case IsDisposableDomain(domain):
		return models.DomainDisposable
	default:
		return models.DomainCorporate
	}
}

// ProviderReputation returns the 0-100 reputation score for a domain.
// Corporate domains without a table entry default to 80; disposable and
// otherwise unknown domains score a neutral 50.
func ProviderReputation(domain string) int {
	domain = strings.ToLower(domain)
	if score, ok := providerReputation[domain]; ok {
		return score
	}
	if !IsCommonProvider(domain) && !IsDisposableDomain(domain) {
		return 80
	}
	return 50
}
