package campaign

// Summary is the read-model exposed by status surfaces; derived, never
// persisted.
type Summary struct {
	Phase           Phase `json:"phase"`
	LeadCount       int   `json:"leads_count"`
	QualifiedCount  int   `json:"qualified_count"`
	EmailsReady     int   `json:"emails_ready"`
	EmailsSent      int   `json:"emails_sent"`
	MonitoringCount int   `json:"monitoring_count"`
	RepliesReceived int   `json:"replies_received"`
}

// Summarize condenses a snapshot into counts for status reporting.
func Summarize(st CampaignState) Summary {
	s := Summary{
		Phase:           st.Phase,
		LeadCount:       len(st.Leads),
		EmailsReady:     len(st.Emails),
		MonitoringCount: st.ActiveMonitorCount(),
	}
	for _, q := range st.Qualification {
		if q.Qualified {
			s.QualifiedCount++
		}
	}
	for _, lg := range st.EmailSendLogs {
		if lg.Status == SendSent {
			s.EmailsSent++
		}
	}
	for _, m := range st.Monitoring {
		if m.ReplyReceived {
			s.RepliesReceived++
		}
	}
	return s
}
