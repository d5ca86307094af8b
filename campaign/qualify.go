package campaign

// Qualifier applies the ideal-customer-profile rule table to leads.
// Scoring is additive and deterministic: identical lead fields always
// yield the identical score and verdict.
type Qualifier struct {
	cfg Config
}

// NewQualifier builds a qualifier from explicit configuration.
func NewQualifier(cfg Config) *Qualifier {
	return &Qualifier{cfg: cfg.withDefaults()}
}

// Score evaluates one lead against the rule table. Reasons record which
// rules fired, in evaluation order.
func (q *Qualifier) Score(lead Lead) Qualification {
	score := 0
	var reasons []string

	if contains(q.cfg.TargetIndustries, lead.Industry) {
		score += 25
		reasons = append(reasons, "Industry matches ICP")
	}
	if contains(q.cfg.TargetSizes, lead.CompanySize) {
		score += 20
		reasons = append(reasons, "Company size matches ICP")
	}
	if len(lead.DecisionMakers) > 0 {
		score += 20
		reasons = append(reasons, "Decision-maker role found")
	}
	switch lead.EmailQuality {
	case QualityPersonal:
		score += 15
		reasons = append(reasons, "Personal email found")
	case QualityRoleBased:
		score += 10
		reasons = append(reasons, "Role-based email found")
	}
	switch lead.IntentConfidence {
	case IntentHigh:
		score += 20
		reasons = append(reasons, "High intent detected")
	case IntentMedium:
		score += 10
		reasons = append(reasons, "Medium intent detected")
	}

	return Qualification{
		CompanyName: lead.CompanyName,
		Domain:      lead.Domain,
		Score:       score,
		Qualified:   score >= q.cfg.MinScore,
		Reasons:     reasons,
	}
}

// ScoreAll recomputes the full qualification set, replacing any prior
// verdicts.
func (q *Qualifier) ScoreAll(leads []Lead) []Qualification {
	out := make([]Qualification, 0, len(leads))
	for _, lead := range leads {
		out = append(out, q.Score(lead))
	}
	return out
}
