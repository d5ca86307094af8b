package campaign

import (
	"sort"
	"strings"
)

// Heuristic lead derivations. These run before (and as a fallback for)
// the LLM classifier, so a lead is always fully populated even when
// every collaborator call fails.

var industryPriority = []string{"ai", "saas", "fintech", "ecommerce", "health-care", "other"}

var sizeLabels = []string{"small", "medium", "large", "unknown"}

var rolePrefixes = []string{"business", "careers", "contact", "info", "sales", "support"}

func normalizeIndustry(raw string) string {
	if raw == "" {
		return "unknown"
	}
	raw = strings.ToLower(raw)
	for _, p := range industryPriority {
		if strings.Contains(raw, p) {
			return p
		}
	}
	return "unknown"
}

func normalizeSizeLabel(raw string) string {
	if raw == "" {
		return "unknown"
	}
	raw = strings.ToLower(raw)
	for _, p := range sizeLabels {
		if strings.Contains(raw, p) {
			return p
		}
	}
	return "unknown"
}

func sizeFromEmployeeEstimate(employees int) string {
	switch {
	case employees <= 0:
		return "unknown"
	case employees <= 50:
		return "small"
	case employees <= 250:
		return "medium"
	case employees <= 1000:
		return "large"
	default:
		return "enterprise"
	}
}

func intentFromKeywords(keywords []string) []string {
	text := strings.ToLower(strings.Join(keywords, " "))
	var intents []string
	if strings.Contains(text, "artificial intelligence") || strings.Contains(text, "machine learning") {
		intents = append(intents, "ai platform")
	}
	if strings.Contains(text, "saas") || strings.Contains(text, "enterprise software") {
		intents = append(intents, "enterprise software")
	}
	if strings.Contains(text, "lead generation") || strings.Contains(text, "b2b") {
		intents = append(intents, "lead generation platform")
	}
	if strings.Contains(text, "automation") {
		intents = append(intents, "automation solution")
	}
	return intents
}

func emailQuality(emails []string) EmailQuality {
	if len(emails) == 0 {
		return QualityNone
	}
	for _, e := range emails {
		local, _, _ := strings.Cut(e, "@")
		if !isRolePrefix(local) {
			return QualityPersonal
		}
	}
	return QualityRoleBased
}

func isRolePrefix(local string) bool {
	i := sort.SearchStrings(rolePrefixes, local)
	return i < len(rolePrefixes) && rolePrefixes[i] == local
}

func intentConfidence(signals []string) IntentConfidence {
	switch len(signals) {
	case 0:
		return IntentLow
	case 1:
		return IntentMedium
	default:
		return IntentHigh
	}
}

// researchConfidence awards 0.2 per populated research facet.
func researchConfidence(lead Lead) float64 {
	score := 0.0
	if lead.Industry != "unknown" {
		score += 0.2
	}
	if lead.CompanySize != "unknown" {
		score += 0.2
	}
	if len(lead.ValidatedEmails) > 0 {
		score += 0.2
	}
	if len(lead.IntentSignals) > 0 {
		score += 0.2
	}
	if len(lead.DecisionMakers) > 0 {
		score += 0.2
	}
	// Avoid 0.6000000000000001-style artifacts in persisted snapshots.
	return float64(int(score*10+0.5)) / 10
}
