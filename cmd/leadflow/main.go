package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"leadflow/calendar"
	"leadflow/campaign"
	"leadflow/db"
	"leadflow/discovery"
	"leadflow/llm"
	"leadflow/outreach"
	"leadflow/webresearch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	model, err := llm.NewClient(ctx, os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatalf("bootstrap llm client: %v", err)
	}

	mailer, err := outreach.NewSMTPMailer(outreach.SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		FromName: os.Getenv("SMTP_FROM_NAME"),
	})
	if err != nil {
		log.Fatalf("bootstrap mailer: %v", err)
	}

	scheduler, err := calendar.NewClient(os.Getenv("CALENDAR_BRIDGE_URL"), os.Getenv("CALENDAR_BRIDGE_TOKEN"))
	if err != nil {
		log.Fatalf("bootstrap calendar client: %v", err)
	}

	var primary campaign.Discoverer
	if apiKey := os.Getenv("APOLLO_API_KEY"); apiKey != "" {
		primary = discovery.NewProviderClient(apiKey)
	}

	collab := campaign.Collaborators{
		Discovery: discovery.NewComposite(primary, discovery.NewWebSearcher()),
		Sites:     webresearch.NewCrawler(nil),
		Contacts:  webresearch.NewExtractor(),
		Analyst:   model,
		Drafter:   model,
		Mailer:    mailer,
		Replies:   outreach.NewReplyLedger(pool),
		Scheduler: scheduler,
	}

	engine, err := campaign.NewEngine(campaign.NewPGStore(pool), collab, campaign.DefaultConfig())
	if err != nil {
		log.Fatalf("bootstrap engine: %v", err)
	}

	campaignID := os.Getenv("CAMPAIGN_ID")
	if campaignID == "" {
		log.Fatal("CAMPAIGN_ID required")
	}

	input := campaign.StepInput{}
	if query := os.Getenv("CAMPAIGN_QUERY"); query != "" {
		input.Init = &campaign.InitParams{
			Query:  query,
			Source: "cli",
			SenderProfile: campaign.SenderProfile{
				SenderName:         os.Getenv("SENDER_NAME"),
				SenderRole:         os.Getenv("SENDER_ROLE"),
				CompanyName:        os.Getenv("SENDER_COMPANY"),
				CompanyDescription: os.Getenv("SENDER_COMPANY_DESCRIPTION"),
			},
		}
	}

	st, err := engine.Step(ctx, campaignID, input)
	if err != nil {
		log.Fatalf("step campaign %s: %v", campaignID, err)
	}
	summary := campaign.Summarize(st)
	log.Printf("campaign %s: phase=%s leads=%d qualified=%d sent=%d monitoring=%d",
		campaignID, summary.Phase, summary.LeadCount, summary.QualifiedCount,
		summary.EmailsSent, summary.MonitoringCount)

	if st.Phase == campaign.PhaseMonitor && st.ActiveMonitorCount() > 0 {
		supervisor := campaign.NewSupervisor(engine, engine.Config().PollInterval)
		if err := supervisor.Run(ctx, campaignID); err != nil {
			log.Fatalf("monitor campaign %s: %v", campaignID, err)
		}
		log.Printf("campaign %s: monitoring complete", campaignID)
	}
}
