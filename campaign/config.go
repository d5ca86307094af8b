package campaign

import "time"

// Config carries the ideal-customer-profile rules and monitoring timing
// for one engine instance. It is passed at construction; the engine
// never reads package-level state.
type Config struct {
	// Qualification rule table inputs.
	TargetIndustries []string
	TargetSizes      []string
	MinScore         int

	// Monitoring timers, measured from the moment a message was sent.
	Followup1After time.Duration
	Followup2After time.Duration
	ExpireAfter    time.Duration

	// PollInterval is the supervisor's fixed inter-poll delay.
	PollInterval time.Duration

	// ResearchParallelism bounds concurrent per-company research.
	// 1 keeps research fully sequential.
	ResearchParallelism int

	// CrawlMaxPages caps the per-site crawl handed to the site reader.
	CrawlMaxPages int
}

// DefaultConfig mirrors the tuning the system shipped with.
func DefaultConfig() Config {
	return Config{
		TargetIndustries:    []string{"ai", "saas", "fintech"},
		TargetSizes:         []string{"small", "medium"},
		MinScore:            70,
		Followup1After:      60 * time.Second,
		Followup2After:      420 * time.Second,
		ExpireAfter:         600 * time.Second,
		PollInterval:        60 * time.Second,
		ResearchParallelism: 1,
		CrawlMaxPages:       6,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.TargetIndustries) == 0 {
		c.TargetIndustries = d.TargetIndustries
	}
	if len(c.TargetSizes) == 0 {
		c.TargetSizes = d.TargetSizes
	}
	if c.MinScore <= 0 {
		c.MinScore = d.MinScore
	}
	if c.Followup1After <= 0 {
		c.Followup1After = d.Followup1After
	}
	if c.Followup2After <= 0 {
		c.Followup2After = d.Followup2After
	}
	if c.ExpireAfter <= 0 {
		c.ExpireAfter = d.ExpireAfter
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.ResearchParallelism <= 0 {
		c.ResearchParallelism = d.ResearchParallelism
	}
	if c.CrawlMaxPages <= 0 {
		c.CrawlMaxPages = d.CrawlMaxPages
	}
	return c
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
