// Package webresearch implements the site-research collaborators:
// best-effort crawling, email extraction with MX validation, and
// decision-maker role detection.
package webresearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultUserAgent = "Mozilla/5.0 (LeadflowResearchBot/1.0)"
	maxCombinedText  = 6000
)

// Crawler walks a company site breadth-first, staying on the start
// host, and returns the combined visible text across visited pages.
type Crawler struct {
	client    *http.Client
	userAgent string
	maxText   int
}

func NewCrawler(client *http.Client) *Crawler {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Crawler{client: client, userAgent: defaultUserAgent, maxText: maxCombinedText}
}

// Crawl visits up to maxPages same-host pages starting at rawURL.
// Individual page failures are skipped; a site that yields nothing
// returns an empty string with no error.
func (c *Crawler) Crawl(ctx context.Context, rawURL string, maxPages int) (string, error) {
	base, err := url.Parse(rawURL)
	if err != nil || base.Host == "" {
		return "", fmt.Errorf("webresearch: invalid site url %q", rawURL)
	}
	if maxPages <= 0 {
		maxPages = 1
	}

	visited := make(map[string]bool, maxPages)
	queue := []string{rawURL}
	var combined strings.Builder

	for len(queue) > 0 && len(visited) < maxPages {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		text, links, err := c.fetch(ctx, current)
		if err != nil {
			continue
		}
		combined.WriteString(" ")
		combined.WriteString(text)
		if combined.Len() >= c.maxText {
			break
		}

		page, err := url.Parse(current)
		if err != nil {
			continue
		}
		for _, link := range links {
			resolved, err := page.Parse(link)
			if err != nil {
				continue
			}
			if resolved.Host == base.Host {
				resolved.Fragment = ""
				queue = append(queue, resolved.String())
			}
		}
	}

	out := strings.TrimSpace(combined.String())
	if len(out) > c.maxText {
		out = out[:c.maxText]
	}
	return out, nil
}

func (c *Crawler) fetch(ctx context.Context, pageURL string) (string, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("webresearch: fetch %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", nil, err
	}

	var (
		parts []string
		links []string
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "a":
				for _, attr := range n.Attr {
					if attr.Key == "href" && attr.Val != "" {
						links = append(links, attr.Val)
					}
				}
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.Join(parts, " "), links, nil
}
