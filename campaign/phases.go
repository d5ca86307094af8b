package campaign

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Campaign-phase handlers. Each one is a total transform over the
// working snapshot, guarded by the phase flag so completed stages never
// re-execute on resume.

func (e *Engine) plannerNode(ctx context.Context, st *CampaignState) error {
	if st.Phase == PhaseMonitor || st.StartFromWriter {
		return nil
	}
	if len(st.Companies) > 0 || len(st.Leads) > 0 {
		// Discovery already ran; keeps repeated polling side-effect free.
		return nil
	}

	candidates, err := e.collab.Discovery.Discover(ctx, st.Query)
	if err != nil || len(candidates) == 0 {
		// Degrades to an empty queue; the campaign terminates at the
		// qualifier router with no qualified leads.
		return nil
	}

	st.Companies = candidates
	if candidates[0].Source != "" {
		st.Source = candidates[0].Source
	}
	return nil
}

func (e *Engine) researchNode(ctx context.Context, st *CampaignState) error {
	if st.Phase == PhaseMonitor || st.StartFromWriter || len(st.Companies) == 0 {
		return nil
	}

	// Drain the queue front-to-back. Research may run in parallel, but
	// results land in popped order so lead ordering stays deterministic.
	batch := st.Companies
	st.Companies = nil

	results := make([]Lead, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.ResearchParallelism)
	for i := range batch {
		g.Go(func() error {
			results[i] = e.researchCompany(gctx, st.Source, batch[i])
			return nil
		})
	}
	// Workers never fail: per-company collaborator errors degrade the
	// lead record instead of aborting the batch.
	_ = g.Wait()

	for _, lead := range results {
		if st.Lead(lead.CompanyName) != nil {
			continue
		}
		st.Leads = append(st.Leads, lead)
	}
	return nil
}

func (e *Engine) researchCompany(ctx context.Context, defaultSource string, c CompanyCandidate) Lead {
	text, err := e.collab.Sites.Crawl(ctx, c.Website, e.cfg.CrawlMaxPages)
	if err != nil {
		text = ""
	}

	emails, err := e.collab.Contacts.Emails(ctx, text, c.Domain)
	if err != nil {
		emails = nil
	}
	roles := e.collab.Contacts.Roles(text)

	industry := normalizeIndustry(c.Industry)
	size := sizeFromEmployeeEstimate(c.EmployeeEstimate)
	intents := intentFromKeywords(c.Keywords)
	var pains []string

	if cls, err := e.collab.Analyst.Classify(ctx, text); err == nil {
		if cls.Industry != "" {
			industry = normalizeIndustry(cls.Industry)
		}
		if cls.CompanySize != "" {
			size = normalizeSizeLabel(cls.CompanySize)
		}
		pains = cls.PainPoints
		if len(intents) == 0 {
			intents = cls.IntentSignals
		}
	}

	summary, err := e.collab.Analyst.Summarize(ctx, text)
	if err != nil {
		summary = ""
	}

	source := c.Source
	if source == "" {
		source = defaultSource
	}

	lead := Lead{
		CompanyName:       c.Name,
		Website:           c.Website,
		Domain:            c.Domain,
		Industry:          industry,
		CompanySize:       size,
		IntentSignals:     intents,
		IntentConfidence:  intentConfidence(intents),
		PainPoints:        pains,
		DecisionMakers:    roles,
		ValidatedEmails:   emails,
		EmailQuality:      emailQuality(emails),
		WebsiteSummary:    summary,
		WebsiteTextSample: truncate(text, 900),
		Source:            source,
	}
	lead.ResearchConfidence = researchConfidence(lead)
	return lead
}

func (e *Engine) qualifierNode(_ context.Context, st *CampaignState) error {
	if st.Phase == PhaseMonitor || st.StartFromWriter {
		return nil
	}
	st.Qualification = e.qualifier.ScoreAll(st.Leads)
	return nil
}

func (e *Engine) qualifierRouter(st *CampaignState) nodeID {
	if st.StartFromWriter {
		return nodeWriter
	}
	for _, q := range st.Qualification {
		if q.Qualified {
			return nodeWriter
		}
	}
	return nodeEnd
}

func (e *Engine) writerNode(ctx context.Context, st *CampaignState) error {
	if st.Phase == PhaseMonitor {
		return nil
	}

	for _, q := range st.Qualification {
		if !q.Qualified {
			continue
		}
		lead := st.Lead(q.CompanyName)
		if lead == nil || len(lead.ValidatedEmails) == 0 {
			continue
		}

		pending := make([]string, 0, len(lead.ValidatedEmails))
		for _, addr := range lead.ValidatedEmails {
			if !hasDraft(st.Emails, lead.CompanyName, addr) {
				pending = append(pending, addr)
			}
		}
		if len(pending) == 0 {
			// Lead already fully drafted; re-entry safety.
			continue
		}

		draft, err := e.collab.Drafter.ColdEmail(ctx, *lead, st.SenderProfile)
		if err != nil {
			continue
		}
		for _, addr := range pending {
			st.Emails = append(st.Emails, DraftedEmail{
				CompanyName: lead.CompanyName,
				Address:     addr,
				Subject:     draft.Subject,
				Body:        draft.Body,
			})
		}
	}
	return nil
}

func (e *Engine) sendGateNode(_ context.Context, _ *CampaignState) error {
	// Suspension point; the router decides whether the step continues.
	return nil
}

func (e *Engine) sendGateRouter(st *CampaignState) nodeID {
	if st.Phase == PhaseMonitor {
		// Replays pass straight through; the sender is a no-op by now.
		return nodeSender
	}
	if st.HumanDecision.SendFirstEmail == "yes" {
		return nodeSender
	}
	// Either no decision yet (suspend) or a recorded rejection, which
	// persists as the campaign's terminal marker.
	return nodeEnd
}

func (e *Engine) senderNode(ctx context.Context, st *CampaignState) error {
	if st.Phase == PhaseMonitor {
		return nil
	}

	for _, item := range st.Emails {
		if hasSendLog(st.EmailSendLogs, item.CompanyName, item.Address) {
			continue
		}
		messageID, err := e.collab.Mailer.Send(ctx, item.Address, item.Subject, item.Body)
		if err != nil {
			st.EmailSendLogs = append(st.EmailSendLogs, SendLog{
				CompanyName: item.CompanyName,
				Address:     item.Address,
				Status:      SendFailed,
				Error:       err.Error(),
				SentAt:      e.now().UTC(),
			})
			continue
		}
		st.EmailSendLogs = append(st.EmailSendLogs, SendLog{
			CompanyName: item.CompanyName,
			Address:     item.Address,
			MessageID:   messageID,
			Status:      SendSent,
			SentAt:      e.now().UTC(),
		})
	}

	// Seed exactly one monitor entry per successfully sent message.
	started := e.now().UTC()
	st.Monitoring = nil
	for _, lg := range st.EmailSendLogs {
		if lg.Status != SendSent {
			continue
		}
		st.Monitoring = append(st.Monitoring, MonitorEntry{
			CompanyName:      lg.CompanyName,
			Address:          lg.Address,
			MessageID:        lg.MessageID,
			MonitorStartedAt: started,
			Status:           MonitorActive,
		})
	}

	st.Phase = PhaseMonitor
	st.HumanDecision.SendFirstEmail = "" // consumed
	return nil
}

func hasDraft(drafts []DraftedEmail, company, address string) bool {
	for _, d := range drafts {
		if d.CompanyName == company && d.Address == address {
			return true
		}
	}
	return false
}

func hasSendLog(logs []SendLog, company, address string) bool {
	for _, lg := range logs {
		if lg.CompanyName == company && lg.Address == address {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
