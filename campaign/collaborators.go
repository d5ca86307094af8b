package campaign

import (
	"context"
	"time"
)

// Collaborator contracts consumed by the engine. Every call is a plain
// synchronous request to an external service; failures degrade the
// record under construction and never abort a batch.

// Classification is the structured output of the company classifier.
// Fields arrive as free-form labels and are normalized by the engine, so
// malformed model output falls back to the heuristic-derived values.
type Classification struct {
	Industry      string   `json:"industry"`
	CompanySize   string   `json:"company_size"`
	IntentSignals []string `json:"intent_signals"`
	PainPoints    []string `json:"pain_points"`
}

// Draft is one generated outreach message.
type Draft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Meeting is the result of booking a calendar slot.
type Meeting struct {
	Link    string
	EventID string
}

// Discoverer finds candidate companies for a search query.
type Discoverer interface {
	Discover(ctx context.Context, query string) ([]CompanyCandidate, error)
}

// SiteReader crawls a company website and returns combined page text.
// Best effort: an empty string with nil error is a valid outcome.
type SiteReader interface {
	Crawl(ctx context.Context, url string, maxPages int) (string, error)
}

// ContactExtractor pulls validated addresses and decision-maker roles
// out of crawled site text.
type ContactExtractor interface {
	Emails(ctx context.Context, text, domain string) ([]string, error)
	Roles(text string) []string
}

// Analyst is the LLM-backed classification and summarization surface.
type Analyst interface {
	Classify(ctx context.Context, text string) (Classification, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// Drafter generates outreach messages.
type Drafter interface {
	ColdEmail(ctx context.Context, lead Lead, sender SenderProfile) (Draft, error)
	Followup(ctx context.Context, lead Lead, followupNumber int, sender SenderProfile) (Draft, error)
}

// Mailer transmits one message and returns its Message-ID.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (messageID string, err error)
}

// ReplyChecker answers whether a reply correlated to a sent message id
// has arrived.
type ReplyChecker interface {
	HasReply(ctx context.Context, messageID string) (bool, error)
}

// Scheduler books a meeting with the given attendee.
type Scheduler interface {
	CreateMeeting(ctx context.Context, attendeeEmail string, start time.Time, duration time.Duration) (Meeting, error)
}

// Collaborators bundles every external capability the engine drives.
type Collaborators struct {
	Discovery Discoverer
	Sites     SiteReader
	Contacts  ContactExtractor
	Analyst   Analyst
	Drafter   Drafter
	Mailer    Mailer
	Replies   ReplyChecker
	Scheduler Scheduler
}
