// Package discovery implements the company-discovery collaborators: a
// lead-data provider API client and a web-search fallback.
package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leadflow/campaign"
)

const defaultProviderURL = "https://api.apollo.io/api/v1"

// ProviderClient queries a lead-data provider's organization search.
type ProviderClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	country string
	perPage int
}

func NewProviderClient(apiKey string) *ProviderClient {
	return &ProviderClient{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultProviderURL,
		apiKey:  apiKey,
		country: "India",
		perPage: 5,
	}
}

// WithBaseURL points the client at a different provider endpoint; used
// by tests.
func (c *ProviderClient) WithBaseURL(baseURL string) *ProviderClient {
	c.baseURL = baseURL
	return c
}

func (c *ProviderClient) WithCountry(country string) *ProviderClient {
	c.country = country
	return c
}

type providerOrganization struct {
	Name              string   `json:"name"`
	WebsiteURL        string   `json:"website_url"`
	PrimaryDomain     string   `json:"primary_domain"`
	Industry          string   `json:"industry"`
	EstimatedEmployee int      `json:"estimated_num_employees"`
	Keywords          []string `json:"keywords"`
}

type providerSearchResponse struct {
	Organizations []providerOrganization `json:"organizations"`
}

// Discover runs one organization search. Candidates without both a
// website and a primary domain are dropped.
func (c *ProviderClient) Discover(ctx context.Context, query string) ([]campaign.CompanyCandidate, error) {
	payload := map[string]any{
		"q_keywords":           query,
		"organization_country": c.country,
		"page":                 1,
		"per_page":             c.perPage,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("discovery: encode search payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/organizations/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("discovery: build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery: provider search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery: provider search: status %d", resp.StatusCode)
	}

	var decoded providerSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("discovery: decode search response: %w", err)
	}

	candidates := make([]campaign.CompanyCandidate, 0, len(decoded.Organizations))
	for _, org := range decoded.Organizations {
		if org.WebsiteURL == "" || org.PrimaryDomain == "" {
			continue
		}
		candidates = append(candidates, campaign.CompanyCandidate{
			Name:             org.Name,
			Website:          org.WebsiteURL,
			Domain:           org.PrimaryDomain,
			Industry:         org.Industry,
			EmployeeEstimate: org.EstimatedEmployee,
			Keywords:         org.Keywords,
			Source:           "provider",
		})
	}
	return candidates, nil
}
