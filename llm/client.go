// Package llm backs the analyst and drafter collaborators with the
// Gemini API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"leadflow/campaign"
)

const defaultModel = "gemini-2.0-flash"

// Client implements campaign.Analyst and campaign.Drafter.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm: api key required")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) generate(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if jsonOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}
	return resp.Text(), nil
}

// Classify extracts business facts from site text. Output labels are
// free-form; the engine normalizes them and falls back to its heuristic
// values when decoding fails.
func (c *Client) Classify(ctx context.Context, text string) (campaign.Classification, error) {
	raw, err := c.generate(ctx, classifyPrompt(text), true)
	if err != nil {
		return campaign.Classification{}, err
	}
	var out campaign.Classification
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return campaign.Classification{}, fmt.Errorf("llm: decode classification: %w", err)
	}
	return out, nil
}

// Summarize produces a short business-focused description of site text.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	out, err := c.generate(ctx, summarizePrompt(text), false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ColdEmail drafts the initial outreach message for a qualified lead.
func (c *Client) ColdEmail(ctx context.Context, lead campaign.Lead, sender campaign.SenderProfile) (campaign.Draft, error) {
	return c.draft(ctx, coldEmailPrompt(lead, sender))
}

// Followup drafts follow-up 1 (gentle reminder) or 2 (final check-in).
func (c *Client) Followup(ctx context.Context, lead campaign.Lead, followupNumber int, sender campaign.SenderProfile) (campaign.Draft, error) {
	return c.draft(ctx, followupPrompt(lead, followupNumber, sender))
}

func (c *Client) draft(ctx context.Context, prompt string) (campaign.Draft, error) {
	raw, err := c.generate(ctx, prompt, true)
	if err != nil {
		return campaign.Draft{}, err
	}
	var out campaign.Draft
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return campaign.Draft{}, fmt.Errorf("llm: decode draft: %w", err)
	}
	if out.Subject == "" || out.Body == "" {
		return campaign.Draft{}, fmt.Errorf("llm: draft missing subject or body")
	}
	return out, nil
}

// stripFences removes markdown code fences some models wrap around JSON
// output despite the response MIME type.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return strings.TrimSpace(raw)
}
