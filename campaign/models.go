package campaign

import "time"

// Phase is the coarse workflow mode gating which handlers are active.
type Phase string

const (
	PhaseCampaign Phase = "campaign"
	PhaseMonitor  Phase = "monitor"
)

// MonitorStatus is the lifecycle of a per-recipient monitor entry.
type MonitorStatus string

const (
	MonitorActive         MonitorStatus = "active"
	MonitorExpired        MonitorStatus = "expired"
	MonitorMeetingCreated MonitorStatus = "meeting_created"
)

// SendStatus records the outcome of one transport attempt.
type SendStatus string

const (
	SendSent   SendStatus = "sent"
	SendFailed SendStatus = "failed"
)

// EmailQuality classifies the best address found for a lead.
type EmailQuality string

const (
	QualityPersonal  EmailQuality = "personal"
	QualityRoleBased EmailQuality = "role_based"
	QualityNone      EmailQuality = "none"
)

// IntentConfidence grades how strongly intent signals back a lead.
type IntentConfidence string

const (
	IntentHigh   IntentConfidence = "high"
	IntentMedium IntentConfidence = "medium"
	IntentLow    IntentConfidence = "low"
)

// CompanyCandidate is a discovered company awaiting research.
type CompanyCandidate struct {
	Name             string   `json:"company_name"`
	Website          string   `json:"company_website"`
	Domain           string   `json:"domain"`
	Industry         string   `json:"industry,omitempty"`
	EmployeeEstimate int      `json:"estimated_employees,omitempty"`
	Keywords         []string `json:"keywords,omitempty"`
	Source           string   `json:"source,omitempty"`
}

// Lead is a researched, enriched company record. Exactly one lead exists
// per distinct company name within a campaign.
type Lead struct {
	CompanyName        string           `json:"company_name"`
	Website            string           `json:"company_website"`
	Domain             string           `json:"domain"`
	Industry           string           `json:"industry"`
	CompanySize        string           `json:"company_size"`
	IntentSignals      []string         `json:"intent_signals"`
	IntentConfidence   IntentConfidence `json:"intent_confidence"`
	PainPoints         []string         `json:"pain_points"`
	DecisionMakers     []string         `json:"decision_makers"`
	ValidatedEmails    []string         `json:"validated_emails"`
	EmailQuality       EmailQuality     `json:"email_quality"`
	WebsiteSummary     string           `json:"website_summary"`
	WebsiteTextSample  string           `json:"website_text_sample"`
	ResearchConfidence float64          `json:"research_confidence"`
	Source             string           `json:"source"`
}

// Qualification is the scored verdict over one lead. It is recomputed in
// full on every qualifier pass.
type Qualification struct {
	CompanyName string   `json:"company_name"`
	Domain      string   `json:"domain"`
	Score       int      `json:"qualification_score"`
	Qualified   bool     `json:"qualified"`
	Reasons     []string `json:"qualification_reason"`
}

// DraftedEmail is an outreach message awaiting human approval.
type DraftedEmail struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"email"`
	Subject     string `json:"email_subject"`
	Body        string `json:"email_body"`
}

// SendLog is one append-only record of a transport attempt.
type SendLog struct {
	CompanyName string     `json:"company_name"`
	Address     string     `json:"email"`
	MessageID   string     `json:"message_id"`
	Status      SendStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	SentAt      time.Time  `json:"sent_at"`
}

// MonitorEntry tracks the post-send lifecycle of one sent message.
type MonitorEntry struct {
	CompanyName      string        `json:"company_name"`
	Address          string        `json:"email"`
	MessageID        string        `json:"message_id"`
	MonitorStartedAt time.Time     `json:"monitor_started_at"`
	LastCheckedAt    *time.Time    `json:"last_checked_at"`
	ReplyReceived    bool          `json:"reply_received"`
	MeetingScheduled bool          `json:"meeting_scheduled"`
	Followup1Sent    bool          `json:"followup_1_sent"`
	Followup2Sent    bool          `json:"followup_2_sent"`
	Status           MonitorStatus `json:"monitor_status"`
	MeetingLink      string        `json:"meet_link,omitempty"`
	CalendarEventID  string        `json:"calendar_event_id,omitempty"`
}

// HumanDecision carries gate inputs. Each field is set once by the
// boundary and cleared by the handler that consumes it; a "no" on the
// send gate persists as the campaign's terminal marker.
type HumanDecision struct {
	SendFirstEmail   string     `json:"send_first_email,omitempty"`
	SendMeetingEmail string     `json:"send_meeting_email,omitempty"`
	MeetingAt        *time.Time `json:"meeting_datetime,omitempty"`
}

// SenderProfile is the outreach identity, immutable for the campaign.
type SenderProfile struct {
	CompanyName        string `json:"company_name"`
	SenderName         string `json:"sender_name"`
	SenderRole         string `json:"sender_role"`
	CompanyDescription string `json:"company_description"`
}

// CampaignState is the single unit of persisted truth for one campaign,
// keyed by campaign id and serialized as a JSON snapshot.
type CampaignState struct {
	Query           string             `json:"query"`
	Companies       []CompanyCandidate `json:"companies"`
	Leads           []Lead             `json:"leads"`
	Qualification   []Qualification    `json:"qualification"`
	Emails          []DraftedEmail     `json:"emails"`
	EmailSendLogs   []SendLog          `json:"email_send_logs"`
	Monitoring      []MonitorEntry     `json:"monitoring"`
	ActiveMonitor   *MonitorEntry      `json:"active_monitor,omitempty"`
	HumanDecision   HumanDecision      `json:"human_decision"`
	Phase           Phase              `json:"phase"`
	Source          string             `json:"source"`
	StartFromWriter bool               `json:"start_from_writer"`
	SenderProfile   SenderProfile      `json:"sender_profile"`
}

// Lead returns the lead for the given company name, or nil.
func (s *CampaignState) Lead(companyName string) *Lead {
	for i := range s.Leads {
		if s.Leads[i].CompanyName == companyName {
			return &s.Leads[i]
		}
	}
	return nil
}

// monitorByMessageID returns the canonical monitoring entry for a message
// id. ActiveMonitor holds a copy for readers; mutations must go through
// the entry returned here.
func (s *CampaignState) monitorByMessageID(messageID string) *MonitorEntry {
	for i := range s.Monitoring {
		if s.Monitoring[i].MessageID == messageID {
			return &s.Monitoring[i]
		}
	}
	return nil
}

// ActiveMonitorCount reports how many entries are still being watched.
func (s *CampaignState) ActiveMonitorCount() int {
	n := 0
	for i := range s.Monitoring {
		if s.Monitoring[i].Status == MonitorActive {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so the engine's working state never aliases
// the persisted snapshot.
func (s CampaignState) Clone() CampaignState {
	out := s
	out.Companies = cloneSlice(s.Companies)
	out.Leads = cloneSlice(s.Leads)
	out.Qualification = cloneSlice(s.Qualification)
	out.Emails = cloneSlice(s.Emails)
	out.EmailSendLogs = cloneSlice(s.EmailSendLogs)
	out.Monitoring = cloneSlice(s.Monitoring)
	for i := range s.Companies {
		out.Companies[i].Keywords = append([]string(nil), s.Companies[i].Keywords...)
	}
	for i := range s.Leads {
		out.Leads[i].IntentSignals = append([]string(nil), s.Leads[i].IntentSignals...)
		out.Leads[i].PainPoints = append([]string(nil), s.Leads[i].PainPoints...)
		out.Leads[i].DecisionMakers = append([]string(nil), s.Leads[i].DecisionMakers...)
		out.Leads[i].ValidatedEmails = append([]string(nil), s.Leads[i].ValidatedEmails...)
	}
	for i := range s.Qualification {
		out.Qualification[i].Reasons = append([]string(nil), s.Qualification[i].Reasons...)
	}
	for i := range s.Monitoring {
		if t := s.Monitoring[i].LastCheckedAt; t != nil {
			tc := *t
			out.Monitoring[i].LastCheckedAt = &tc
		}
	}
	if s.ActiveMonitor != nil {
		am := *s.ActiveMonitor
		if t := s.ActiveMonitor.LastCheckedAt; t != nil {
			tc := *t
			am.LastCheckedAt = &tc
		}
		out.ActiveMonitor = &am
	}
	if t := s.HumanDecision.MeetingAt; t != nil {
		tc := *t
		out.HumanDecision.MeetingAt = &tc
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
