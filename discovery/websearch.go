package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"leadflow/campaign"
)

const defaultSearchURL = "https://html.duckduckgo.com/html/"

// badDomains are media, social, and aggregator hosts that never resolve
// to a real company site.
var badDomains = []string{
	"facebook.com", "linkedin.com", "twitter.com", "x.com",
	"reddit.com", "whatsapp.com", "youtube.com", "instagram.com",
	"tracxn.com", "f6s.com", "crunchbase.com", "medium.com",
	"techcrunch.com", "news", "wikipedia.org", "britannica.com", "wikimedia.org",
}

// rejectKeywords mark directory/press hosts rather than company sites.
var rejectKeywords = []string{
	"news", "blog", "mag", "tracker", "directory",
	"listing", "media", "funding", "startup",
	"magazine", "portal", "wiki",
}

// WebSearcher discovers company sites through an HTML search endpoint,
// filtering out aggregators and media hosts.
type WebSearcher struct {
	client    *http.Client
	endpoint  string
	userAgent string
	maxHits   int
}

func NewWebSearcher() *WebSearcher {
	return &WebSearcher{
		client:    &http.Client{Timeout: 10 * time.Second},
		endpoint:  defaultSearchURL,
		userAgent: "Mozilla/5.0 (LeadflowResearchBot/1.0)",
		maxHits:   5,
	}
}

// WithEndpoint points the searcher at a different endpoint; used by
// tests.
func (w *WebSearcher) WithEndpoint(endpoint string) *WebSearcher {
	w.endpoint = endpoint
	return w
}

func (w *WebSearcher) Discover(ctx context.Context, query string) ([]campaign.CompanyCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: build search request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery: web search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery: web search: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("discovery: parse search results: %w", err)
	}

	seen := make(map[string]bool)
	var candidates []campaign.CompanyCandidate
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(candidates) >= w.maxHits {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			if domain := resultDomain(n); domain != "" && !seen[domain] && companySite(domain) {
				seen[domain] = true
				candidates = append(candidates, campaign.CompanyCandidate{
					Name:    companyNameFromDomain(domain),
					Website: "https://" + domain,
					Domain:  domain,
					Source:  "web",
				})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return candidates, nil
}

// resultDomain extracts the linked host from a search-result anchor,
// unwrapping redirect-style links that carry the target as a query
// parameter.
func resultDomain(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		u, err := url.Parse(attr.Val)
		if err != nil {
			return ""
		}
		if target := u.Query().Get("uddg"); target != "" {
			if tu, err := url.Parse(target); err == nil {
				u = tu
			}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return ""
		}
		return strings.ToLower(u.Host)
	}
	return ""
}

func companySite(domain string) bool {
	for _, bad := range badDomains {
		if strings.Contains(domain, bad) {
			return false
		}
	}
	for _, kw := range rejectKeywords {
		if strings.Contains(domain, kw) {
			return false
		}
	}
	return true
}

func companyNameFromDomain(domain string) string {
	parts := strings.Split(domain, ".")
	key := parts[0]
	if len(parts) >= 2 {
		key = parts[len(parts)-2]
	}
	words := strings.Fields(strings.ReplaceAll(key, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
