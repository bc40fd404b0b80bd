package lookup

import (
	"reflect"
	"testing"

	"mailscope/internal/models"
)

func TestAnalyzePattern(t *testing.T) {
	tests := []struct {
		name            string
		email           string
		expectedDomain  models.DomainType
		expectedPattern models.UsernamePattern
		expectedRep     int
		expectedQuality int
	}{
		{
			name:            "Professional gmail address",
			email:           "john.doe@gmail.com",
			expectedDomain:  models.DomainPersonal,
			expectedPattern: models.PatternProfessional,
			expectedRep:     95,
			// 50 + personal(10) + professional(20) + (95-50)/5 = 89
			expectedQuality: 89,
		},
		{
			name:            "Disposable short address",
			email:           "test@yopmail.com",
			expectedDomain:  models.DomainDisposable,
			expectedPattern: models.PatternSimple,
			expectedRep:     50,
			// 50 + disposable(-30) + simple(10) + 0 = 30
			expectedQuality: 30,
		},
		{
			name:            "Corporate professional address",
			email:           "jane.smith@acme-corp.com",
			expectedDomain:  models.DomainCorporate,
			expectedPattern: models.PatternProfessional,
			expectedRep:     80,
			// 50 + corporate(20) + professional(20) + (80-50)/5 = 96
			expectedQuality: 96,
		},
		{
			name:            "University address",
			email:           "student42@cs.stanford.edu",
			expectedDomain:  models.DomainEdu,
			expectedPattern: models.PatternCasual,
			expectedRep:     80,
			// 50 + edu(15) + casual(5) + 6 = 76
			expectedQuality: 76,
		},
		{
			name:            "Generated numeric address",
			email:           "user123456@hotmail.com",
			expectedDomain:  models.DomainPersonal,
			expectedPattern: models.PatternNumeric,
			expectedRep:     85,
			// 50 + personal(10) + numeric(-5) + (85-50)/5 = 62
			expectedQuality: 62,
		},
		{
			name:            "Self-describing burner domain",
			email:           "bob@tempinbox.io",
			expectedDomain:  models.DomainDisposable,
			expectedPattern: models.PatternSimple,
			expectedRep:     50,
			expectedQuality: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := AnalyzePattern(tt.email)

			if m.DomainType != tt.expectedDomain {
				t.Errorf("DomainType = %q, want %q", m.DomainType, tt.expectedDomain)
			}
			if m.UsernamePattern != tt.expectedPattern {
				t.Errorf("UsernamePattern = %q, want %q", m.UsernamePattern, tt.expectedPattern)
			}
			if m.ProviderReputation != tt.expectedRep {
				t.Errorf("ProviderReputation = %d, want %d", m.ProviderReputation, tt.expectedRep)
			}
			if m.QualityScore != tt.expectedQuality {
				t.Errorf("QualityScore = %d, want %d", m.QualityScore, tt.expectedQuality)
			}
		})
	}
}

func TestAnalyzePatternMalformed(t *testing.T) {
	for _, email := range []string{"", "no-at-sign", "two@@ats", "a@b@c"} {
		m := AnalyzePattern(email)
		if !reflect.DeepEqual(m, models.StructuralMetrics{}) {
			t.Errorf("AnalyzePattern(%q) = %+v, want zero metrics", email, m)
		}
	}
}

func TestAnalyzePatternEmptyUsername(t *testing.T) {
	m := AnalyzePattern("@example.com")
	if m.UsernamePattern != models.PatternUnknown {
		t.Errorf("UsernamePattern = %q, want UNKNOWN", m.UsernamePattern)
	}
	if m.Domain != "example.com" {
		t.Errorf("Domain = %q, want example.com", m.Domain)
	}
}

// Structural analysis is a pure function: same input, same output.
func TestAnalyzePatternDeterministic(t *testing.T) {
	emails := []string{"john.doe@gmail.com", "x9f2k1@unknown.xyz", "admin@company.co"}
	for _, email := range emails {
		first := AnalyzePattern(email)
		for i := 0; i < 10; i++ {
			if got := AnalyzePattern(email); !reflect.DeepEqual(got, first) {
				t.Fatalf("AnalyzePattern(%q) not deterministic: %+v vs %+v", email, got, first)
			}
		}
	}
}

func TestQualityScoreBounds(t *testing.T) {
	emails := []string{
		"a@b.co", "x1234567890@tempmail.temp", "first.last@gmail.com",
		"@missing.com", "weird+tag@sub.domain.edu.au", "q@throwaway.email",
	}
	for _, email := range emails {
		m := AnalyzePattern(email)
		if m.QualityScore < 0 || m.QualityScore > 100 {
			t.Errorf("QualityScore for %q = %d, out of [0,100]", email, m.QualityScore)
		}
	}
}

func TestClassifyDomainOrder(t *testing.T) {
	tests := []struct {
		domain   string
		expected models.DomainType
	}{
		// .edu wins even when a disposable indicator is present
		{"tempuniversity.edu", models.DomainEdu},
		{"mit.edu", models.DomainEdu},
		{"ox.edu.uk", models.DomainEdu},
		{"gmail.com", models.DomainPersonal},
		{"yopmail.com", models.DomainDisposable},
		{"disposable-mail.net", models.DomainDisposable},
		{"acme.io", models.DomainCorporate},
	}
	for _, tt := range tests {
		if got := ClassifyDomain(tt.domain); got != tt.expected {
			t.Errorf("ClassifyDomain(%q) = %q, want %q", tt.domain, got, tt.expected)
		}
	}
}
