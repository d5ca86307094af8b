package campaign

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Hand-rolled collaborator fakes shared across the package tests.

type fakeDiscovery struct {
	mu         sync.Mutex
	candidates []CompanyCandidate
	err        error
	calls      int
}

func (f *fakeDiscovery) Discover(context.Context, string) ([]CompanyCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.candidates, f.err
}

type fakeSites struct {
	text string
	err  error
}

func (f *fakeSites) Crawl(context.Context, string, int) (string, error) {
	return f.text, f.err
}

type fakeContacts struct {
	emails []string
	err    error
	roles  []string
}

func (f *fakeContacts) Emails(context.Context, string, string) ([]string, error) {
	return f.emails, f.err
}

func (f *fakeContacts) Roles(string) []string {
	return f.roles
}

type fakeAnalyst struct {
	cls     Classification
	clsErr  error
	summary string
	sumErr  error
}

func (f *fakeAnalyst) Classify(context.Context, string) (Classification, error) {
	return f.cls, f.clsErr
}

func (f *fakeAnalyst) Summarize(context.Context, string) (string, error) {
	return f.summary, f.sumErr
}

type fakeDrafter struct {
	cold        Draft
	coldErr     error
	coldCalls   int
	followup    Draft
	followupErr error
	// follow-up numbers requested, in order
	followupNumbers []int
}

func (f *fakeDrafter) ColdEmail(context.Context, Lead, SenderProfile) (Draft, error) {
	f.coldCalls++
	return f.cold, f.coldErr
}

func (f *fakeDrafter) Followup(_ context.Context, _ Lead, number int, _ SenderProfile) (Draft, error) {
	f.followupNumbers = append(f.followupNumbers, number)
	return f.followup, f.followupErr
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	failFor map[string]error
	sent    []sentMail
	nextID  int
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) (string, error) {
	if err := f.failFor[to]; err != nil {
		return "", err
	}
	f.nextID++
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return fmt.Sprintf("<msg-%d@test>", f.nextID), nil
}

type fakeReplies struct {
	replied map[string]bool
	err     error
}

func (f *fakeReplies) HasReply(_ context.Context, messageID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.replied[messageID], nil
}

type fakeScheduler struct {
	meeting Meeting
	err     error
	calls   int
	lastAt  time.Time
	lastDur time.Duration
}

func (f *fakeScheduler) CreateMeeting(_ context.Context, _ string, start time.Time, duration time.Duration) (Meeting, error) {
	f.calls++
	f.lastAt = start
	f.lastDur = duration
	if f.err != nil {
		return Meeting{}, f.err
	}
	return f.meeting, nil
}

// fixture bundles an engine over a MemoryStore with every fake
// reachable for assertions.
type fixture struct {
	engine    *Engine
	store     *MemoryStore
	discovery *fakeDiscovery
	sites     *fakeSites
	contacts  *fakeContacts
	analyst   *fakeAnalyst
	drafter   *fakeDrafter
	mailer    *fakeMailer
	replies   *fakeReplies
	scheduler *fakeScheduler
	clock     *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newFixture(cfg Config) (*fixture, error) {
	f := &fixture{
		store: NewMemoryStore(),
		discovery: &fakeDiscovery{candidates: []CompanyCandidate{{
			Name:             "Acme AI",
			Website:          "https://acme.ai",
			Domain:           "acme.ai",
			Industry:         "ai",
			EmployeeEstimate: 40,
			Keywords:         []string{"artificial intelligence", "automation"},
			Source:           "provider",
		}}},
		sites:    &fakeSites{text: "Acme AI builds automation. Our CEO and founder lead the team. contact@acme.ai"},
		contacts: &fakeContacts{emails: []string{"contact@acme.ai"}, roles: []string{"ceo", "founder"}},
		analyst:  &fakeAnalyst{cls: Classification{Industry: "ai", CompanySize: "small"}, summary: "Acme AI builds automation tools."},
		drafter: &fakeDrafter{
			cold:     Draft{Subject: "Quick question", Body: "Hello from the outreach team."},
			followup: Draft{Subject: "Following up", Body: "Just checking in."},
		},
		mailer:    &fakeMailer{},
		replies:   &fakeReplies{replied: map[string]bool{}},
		scheduler: &fakeScheduler{meeting: Meeting{Link: "https://meet.test/abc", EventID: "evt-1"}},
		clock:     &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
	}

	engine, err := NewEngine(f.store, Collaborators{
		Discovery: f.discovery,
		Sites:     f.sites,
		Contacts:  f.contacts,
		Analyst:   f.analyst,
		Drafter:   f.drafter,
		Mailer:    f.mailer,
		Replies:   f.replies,
		Scheduler: f.scheduler,
	}, cfg)
	if err != nil {
		return nil, err
	}
	f.engine = engine.WithClock(f.clock.Now)
	return f, nil
}
