package clean

import (
	"regexp"
	"strings"
)

// Stateless list-cleaning utilities applied to raw email lists before
// analysis. Each step is order-preserving; Clean composes them in the
// order a typical import runs them.

var emailFormatRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// TrimSpaces trims surrounding whitespace from every entry.
func TrimSpaces(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		out = append(out, strings.TrimSpace(e))
	}
	return out
}

// RemoveEmpty drops blank entries.
func RemoveEmpty(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if strings.TrimSpace(e) != "" {
			out = append(out, e)
		}
	}
	return out
}

// RemoveDuplicates keeps the first occurrence of each entry.
func RemoveDuplicates(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// RemoveWithoutAt drops entries that contain no @.
func RemoveWithoutAt(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if strings.Contains(e, "@") {
			out = append(out, e)
		}
	}
	return out
}

// RemoveWithMultipleAt drops entries with more than one @.
func RemoveWithMultipleAt(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if strings.Count(e, "@") == 1 {
			out = append(out, e)
		}
	}
	return out
}

// LowercaseDomains lowercases the domain part, leaving the username as
// entered.
func LowercaseDomains(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		at := strings.LastIndex(e, "@")
		if at < 0 {
			out = append(out, e)
			continue
		}
		out = append(out, e[:at+1]+strings.ToLower(e[at+1:]))
	}
	return out
}

// FilterValidFormat keeps only entries matching the basic address shape.
func FilterValidFormat(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if emailFormatRe.MatchString(e) {
			out = append(out, e)
		}
	}
	return out
}

// Clean runs the full pipeline: trim, drop empties, require exactly one
// @, lowercase domains, dedupe.
func Clean(emails []string) []string {
	cleaned := TrimSpaces(emails)
	cleaned = RemoveEmpty(cleaned)
	cleaned = RemoveWithoutAt(cleaned)
	cleaned = RemoveWithMultipleAt(cleaned)
	cleaned = LowercaseDomains(cleaned)
	return RemoveDuplicates(cleaned)
}
