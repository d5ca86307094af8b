package campaign

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func initInput(query string) StepInput {
	return StepInput{Init: &InitParams{
		Query:  query,
		Source: "test",
		SenderProfile: SenderProfile{
			CompanyName:        "Leadflow",
			SenderName:         "Priya",
			SenderRole:         "Growth Lead",
			CompanyDescription: "Outbound automation for B2B teams",
		},
	}}
}

func TestNewEngine_MissingStore(t *testing.T) {
	_, err := NewEngine(nil, Collaborators{}, DefaultConfig())
	if err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestNewEngine_MissingCollaborator(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}

	collab := Collaborators{
		Discovery: f.discovery,
		Sites:     f.sites,
		Contacts:  f.contacts,
		Analyst:   f.analyst,
		Drafter:   f.drafter,
		Mailer:    f.mailer,
		Replies:   f.replies,
		// Scheduler intentionally nil
	}
	if _, err := NewEngine(NewMemoryStore(), collab, DefaultConfig()); err == nil {
		t.Fatalf("expected error for missing scheduler")
	}
}

func TestStep_UnknownCampaign(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}

	_, err = f.engine.Step(context.Background(), "nope", StepInput{})
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestStep_InitWithoutQuery(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}

	_, err = f.engine.Step(context.Background(), "c1", StepInput{Init: &InitParams{}})
	if !errors.Is(err, ErrMissingQuery) {
		t.Fatalf("expected ErrMissingQuery, got %v", err)
	}
}

func TestStep_EmptyCampaignID(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}

	if _, err := f.engine.Step(context.Background(), "", StepInput{}); err == nil {
		t.Fatalf("expected error for empty campaign id")
	}
}

func TestStep_SuspendsAtSendGate(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	ctx := context.Background()

	st, err := f.engine.Step(ctx, "c1", initInput("ai startups"))
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	if st.Phase != PhaseCampaign {
		t.Fatalf("expected campaign phase, got %s", st.Phase)
	}
	if len(st.Leads) != 1 || st.Leads[0].CompanyName != "Acme AI" {
		t.Fatalf("unexpected leads: %+v", st.Leads)
	}
	if len(st.Qualification) != 1 || !st.Qualification[0].Qualified {
		t.Fatalf("expected one qualified verdict, got %+v", st.Qualification)
	}
	if len(st.Emails) != 1 || st.Emails[0].Address != "contact@acme.ai" {
		t.Fatalf("expected one drafted email, got %+v", st.Emails)
	}
	if len(st.EmailSendLogs) != 0 {
		t.Fatalf("nothing may send before approval, got %+v", st.EmailSendLogs)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("mailer must not be called before approval")
	}
}

func TestStep_ResumeWithoutInputIsStable(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	ctx := context.Background()

	first, err := f.engine.Step(ctx, "c1", initInput("ai startups"))
	if err != nil {
		t.Fatalf("first step: %v", err)
	}
	second, err := f.engine.Step(ctx, "c1", StepInput{})
	if err != nil {
		t.Fatalf("second step: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resume with no input changed the snapshot:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if f.discovery.calls != 1 {
		t.Fatalf("discovery must run once, ran %d times", f.discovery.calls)
	}
	if f.drafter.coldCalls != 1 {
		t.Fatalf("cold email must draft once, drafted %d times", f.drafter.coldCalls)
	}
}

func TestStep_ApproveSendsAndStartsMonitoring(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	ctx := context.Background()

	if _, err := f.engine.Step(ctx, "c1", initInput("ai startups")); err != nil {
		t.Fatalf("init step: %v", err)
	}
	st, err := f.engine.Step(ctx, "c1", StepInput{Decision: HumanDecision{SendFirstEmail: "yes"}})
	if err != nil {
		t.Fatalf("approve step: %v", err)
	}

	if st.Phase != PhaseMonitor {
		t.Fatalf("expected monitor phase, got %s", st.Phase)
	}
	if len(f.mailer.sent) != 1 || f.mailer.sent[0].to != "contact@acme.ai" {
		t.Fatalf("unexpected sends: %+v", f.mailer.sent)
	}
	if len(st.EmailSendLogs) != 1 || st.EmailSendLogs[0].Status != SendSent {
		t.Fatalf("unexpected send logs: %+v", st.EmailSendLogs)
	}
	if len(st.Monitoring) != 1 || st.Monitoring[0].Status != MonitorActive {
		t.Fatalf("expected one active monitor entry, got %+v", st.Monitoring)
	}
	if st.Monitoring[0].MessageID != st.EmailSendLogs[0].MessageID {
		t.Fatalf("monitor entry not correlated to send log")
	}
	if st.HumanDecision.SendFirstEmail != "" {
		t.Fatalf("approval must be consumed, got %q", st.HumanDecision.SendFirstEmail)
	}
}

func TestStep_ApprovalIsIdempotent(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	ctx := context.Background()

	if _, err := f.engine.Step(ctx, "c1", initInput("ai startups")); err != nil {
		t.Fatalf("init step: %v", err)
	}
	if _, err := f.engine.Step(ctx, "c1", StepInput{Decision: HumanDecision{SendFirstEmail: "yes"}}); err != nil {
		t.Fatalf("approve step: %v", err)
	}
	st, err := f.engine.Step(ctx, "c1", StepInput{})
	if err != nil {
		t.Fatalf("poll step: %v", err)
	}

	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected exactly one send across steps, got %d", len(f.mailer.sent))
	}
	if len(st.EmailSendLogs) != 1 {
		t.Fatalf("expected one send log, got %+v", st.EmailSendLogs)
	}
}

func TestStep_RejectionIsTerminal(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	ctx := context.Background()

	if _, err := f.engine.Step(ctx, "c1", initInput("ai startups")); err != nil {
		t.Fatalf("init step: %v", err)
	}
	st, err := f.engine.Step(ctx, "c1", StepInput{Decision: HumanDecision{SendFirstEmail: "no"}})
	if err != nil {
		t.Fatalf("reject step: %v", err)
	}

	if st.Phase != PhaseCampaign {
		t.Fatalf("rejected campaign must stay in campaign phase, got %s", st.Phase)
	}
	if st.HumanDecision.SendFirstEmail != "no" {
		t.Fatalf("rejection must persist as terminal marker, got %q", st.HumanDecision.SendFirstEmail)
	}
	if len(f.mailer.sent) != 0 {
		t.Fatalf("rejected campaign must not send")
	}

	// Later polls keep the campaign parked.
	again, err := f.engine.Step(ctx, "c1", StepInput{})
	if err != nil {
		t.Fatalf("poll after rejection: %v", err)
	}
	if len(f.mailer.sent) != 0 || again.Phase != PhaseCampaign {
		t.Fatalf("rejection not stable: sent=%d phase=%s", len(f.mailer.sent), again.Phase)
	}
}

func TestStep_StartFromWriter(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	ctx := context.Background()

	lead := Lead{
		CompanyName:     "Seeded Corp",
		Domain:          "seeded.io",
		Industry:        "saas",
		CompanySize:     "small",
		ValidatedEmails: []string{"hello@seeded.io"},
	}
	input := StepInput{Init: &InitParams{
		StartFromWriter: true,
		Leads:           []Lead{lead},
		Qualification: []Qualification{{
			CompanyName: "Seeded Corp",
			Domain:      "seeded.io",
			Score:       80,
			Qualified:   true,
		}},
	}}

	st, err := f.engine.Step(ctx, "c2", input)
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	if f.discovery.calls != 0 {
		t.Fatalf("seeded campaign must not discover, ran %d times", f.discovery.calls)
	}
	if len(st.Emails) != 1 || st.Emails[0].CompanyName != "Seeded Corp" {
		t.Fatalf("expected draft for seeded lead, got %+v", st.Emails)
	}
}

func TestStep_NoQualifiedLeadsEndsCampaign(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	// No contact data at all keeps every score below threshold.
	f.contacts.emails = nil
	f.contacts.roles = nil
	f.discovery.candidates[0].Industry = "logistics"
	f.discovery.candidates[0].Keywords = nil
	f.analyst.cls = Classification{}

	st, err := f.engine.Step(context.Background(), "c1", initInput("logistics startups"))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(st.Emails) != 0 {
		t.Fatalf("unqualified campaign must not draft, got %+v", st.Emails)
	}
	if f.drafter.coldCalls != 0 {
		t.Fatalf("drafter must not run without qualified leads")
	}
}

func TestStep_DiscoveryFailureDegrades(t *testing.T) {
	f, err := newFixture(DefaultConfig())
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	f.discovery.err = errors.New("provider down")

	st, err := f.engine.Step(context.Background(), "c1", initInput("ai startups"))
	if err != nil {
		t.Fatalf("discovery failure must not fail the step: %v", err)
	}
	if len(st.Companies) != 0 || len(st.Leads) != 0 {
		t.Fatalf("expected empty campaign, got %+v", st)
	}
}
