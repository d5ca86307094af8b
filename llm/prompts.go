package llm

import (
	"fmt"
	"strings"

	"leadflow/campaign"
)

const classifyTextLimit = 3500

const summarizeTextLimit = 3000

func classifyPrompt(text string) string {
	return fmt.Sprintf(`Extract business facts ONLY from the text below.
Do not invent decision-maker names.
Add intent_signals and pain_points only when short phrases in the text support them.

Return JSON ONLY:
{
  "industry": "ai | saas | fintech | ecommerce | other | health-care",
  "company_size": "small | medium | large | unknown",
  "intent_signals": [],
  "pain_points": []
}

TEXT:
%s`, clip(text, classifyTextLimit))
}

func summarizePrompt(text string) string {
	return fmt.Sprintf(`Summarize the following company website text in a clear, business-focused way.
Return ONLY the summary text, 4-6 concise sentences.
Use only the provided text; no assumptions, opinions, or invented products.
Focus on what the company does, who it serves, and key offerings.

TEXT:
%s`, clip(text, summarizeTextLimit))
}

func coldEmailPrompt(lead campaign.Lead, sender campaign.SenderProfile) string {
	return fmt.Sprintf(`Write a short, professional B2B cold email for the company below.

Rules:
- Plain text only, no emojis, no hype, no placeholders like [Your Name]
- 100-200 words, 3-4 paragraphs
- Mention company context naturally
- Clear, soft call to action

Return JSON ONLY: {"subject": "...", "body": "..."}
The subject must be under 60 characters.

Sender:
- Name: %s
- Role: %s
- Company: %s
- What we do: %s

Recipient company: %s
Company summary: %s
Pain points: %s
Intent signals: %s`,
		sender.SenderName, sender.SenderRole, sender.CompanyName, sender.CompanyDescription,
		lead.CompanyName, lead.WebsiteSummary,
		strings.Join(lead.PainPoints, ", "), strings.Join(lead.IntentSignals, ", "))
}

func followupPrompt(lead campaign.Lead, followupNumber int, sender campaign.SenderProfile) string {
	tone := "gentle reminder"
	if followupNumber >= 2 {
		tone = "final polite check-in"
	}
	return fmt.Sprintf(`Write a professional B2B follow-up email (follow-up #%d, tone: %s).

Rules:
- Plain text only, no emojis, no hype, no placeholders
- 60-90 words, polite, not pushy, clear soft call to action

Return JSON ONLY: {"subject": "...", "body": "..."}

Sender:
- Name: %s
- Role: %s
- Company: %s
- What we do: %s

Recipient company: %s
Industry: %s
Pain points: %s
Original intent: %s`,
		followupNumber, tone,
		sender.SenderName, sender.SenderRole, sender.CompanyName, sender.CompanyDescription,
		lead.CompanyName, lead.Industry,
		strings.Join(lead.PainPoints, ", "), strings.Join(lead.IntentSignals, ", "))
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
