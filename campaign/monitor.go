package campaign

import (
	"context"
	"fmt"
	"time"
)

// Monitoring-phase handlers: reply/follow-up/expiry scanning, follow-up
// sending, and meeting creation.

// monitorNode scans active entries in insertion order and pauses on the
// first one that needs attention. One entry per invocation: this bounds
// handler latency and lets the engine yield for a human gate.
func (e *Engine) monitorNode(ctx context.Context, st *CampaignState) error {
	if st.Phase != PhaseMonitor {
		return nil
	}
	if st.ActiveMonitor != nil {
		// A pending gate survives repeated polls and process restarts.
		return nil
	}

	now := e.now().UTC()
	for i := range st.Monitoring {
		m := &st.Monitoring[i]
		if m.Status != MonitorActive {
			continue
		}
		elapsed := now.Sub(m.MonitorStartedAt)

		if !m.ReplyReceived {
			// Correlation lookup failures count as "no reply yet".
			if ok, err := e.collab.Replies.HasReply(ctx, m.MessageID); err == nil && ok {
				m.ReplyReceived = true
				checked := now
				m.LastCheckedAt = &checked
				e.pauseOn(st, m)
				return nil
			}
		}
		// Follow-ups target non-responders only.
		if elapsed >= e.cfg.Followup1After && !m.Followup1Sent && !m.ReplyReceived {
			e.pauseOn(st, m)
			return nil
		}
		if elapsed >= e.cfg.Followup2After && !m.Followup2Sent && !m.ReplyReceived {
			e.pauseOn(st, m)
			return nil
		}
		if elapsed >= e.cfg.ExpireAfter && !m.ReplyReceived && !m.MeetingScheduled {
			m.Status = MonitorExpired
		}
	}

	st.ActiveMonitor = nil
	return nil
}

// pauseOn publishes a copy of the triggering entry; mutations always go
// through the canonical entry in Monitoring.
func (e *Engine) pauseOn(st *CampaignState, m *MonitorEntry) {
	cp := *m
	st.ActiveMonitor = &cp
}

func (e *Engine) monitorRouter(st *CampaignState) nodeID {
	if st.Phase != PhaseMonitor || st.ActiveMonitor == nil {
		return nodeEnd
	}
	if st.ActiveMonitor.ReplyReceived {
		return nodeMeetingGate
	}
	return nodeFollowup
}

func (e *Engine) meetingGateNode(_ context.Context, _ *CampaignState) error {
	// Suspension point; the router decides whether the step continues.
	return nil
}

// meetingGateRouter consumes a recorded rejection so it cannot replay on
// later passes; approvals are consumed by the meeting handler once the
// event exists.
func (e *Engine) meetingGateRouter(st *CampaignState) nodeID {
	switch d := st.HumanDecision.SendMeetingEmail; {
	case d == "":
		// Awaiting the human decision.
		return nodeEnd
	case d == "yes" && st.HumanDecision.MeetingAt != nil:
		return nodeMeeting
	case d == "yes":
		// Approved without a datetime; the boundary rejects this shape,
		// so simply keep waiting.
		return nodeEnd
	default:
		st.HumanDecision.SendMeetingEmail = ""
		st.ActiveMonitor = nil
		return nodeMonitor
	}
}

// followupNode drafts and sends exactly one follow-up for the paused
// entry, marks the corresponding flag, and hands control back to the
// monitor scan.
func (e *Engine) followupNode(ctx context.Context, st *CampaignState) error {
	if st.ActiveMonitor == nil {
		return nil
	}
	m := st.monitorByMessageID(st.ActiveMonitor.MessageID)
	if m == nil {
		st.ActiveMonitor = nil
		return nil
	}

	followupNumber := 1
	if m.Followup1Sent {
		followupNumber = 2
	}

	lead := Lead{CompanyName: m.CompanyName}
	if l := st.Lead(m.CompanyName); l != nil {
		lead = *l
	}

	draft, err := e.collab.Drafter.Followup(ctx, lead, followupNumber, st.SenderProfile)
	if err == nil {
		messageID, sendErr := e.collab.Mailer.Send(ctx, m.Address, draft.Subject, draft.Body)
		lg := SendLog{
			CompanyName: m.CompanyName,
			Address:     m.Address,
			MessageID:   messageID,
			Status:      SendSent,
			SentAt:      e.now().UTC(),
		}
		if sendErr != nil {
			lg.Status = SendFailed
			lg.Error = sendErr.Error()
		}
		st.EmailSendLogs = append(st.EmailSendLogs, lg)
	} else {
		st.EmailSendLogs = append(st.EmailSendLogs, SendLog{
			CompanyName: m.CompanyName,
			Address:     m.Address,
			Status:      SendFailed,
			Error:       err.Error(),
			SentAt:      e.now().UTC(),
		})
	}

	// One attempt per follow-up slot, success or not; otherwise a
	// permanently failing recipient would retry on every poll.
	if followupNumber == 1 {
		m.Followup1Sent = true
	} else {
		m.Followup2Sent = true
	}
	checked := e.now().UTC()
	m.LastCheckedAt = &checked
	st.ActiveMonitor = nil
	return nil
}

// meetingNode books a 30-minute slot for the paused entry. A calendar
// failure surfaces as a step error with the gate still pending, so the
// next poll retries the booking.
func (e *Engine) meetingNode(ctx context.Context, st *CampaignState) error {
	if st.ActiveMonitor == nil {
		return nil
	}
	m := st.monitorByMessageID(st.ActiveMonitor.MessageID)
	if m == nil {
		st.ActiveMonitor = nil
		return nil
	}
	at := st.HumanDecision.MeetingAt
	if at == nil {
		return nil
	}

	meeting, err := e.collab.Scheduler.CreateMeeting(ctx, m.Address, *at, 30*time.Minute)
	if err != nil {
		return fmt.Errorf("campaign: create meeting for %s: %w", m.Address, err)
	}

	m.MeetingLink = meeting.Link
	m.CalendarEventID = meeting.EventID
	m.Status = MonitorMeetingCreated
	m.MeetingScheduled = true
	checked := e.now().UTC()
	m.LastCheckedAt = &checked

	st.HumanDecision.SendMeetingEmail = ""
	st.HumanDecision.MeetingAt = nil
	st.ActiveMonitor = nil
	return nil
}
