package discovery

import (
	"context"

	"leadflow/campaign"
)

// Composite tries the provider first and falls back to web search when
// the provider errors or returns nothing.
type Composite struct {
	Primary  campaign.Discoverer
	Fallback campaign.Discoverer
}

func NewComposite(primary, fallback campaign.Discoverer) *Composite {
	return &Composite{Primary: primary, Fallback: fallback}
}

func (c *Composite) Discover(ctx context.Context, query string) ([]campaign.CompanyCandidate, error) {
	if c.Primary != nil {
		candidates, err := c.Primary.Discover(ctx, query)
		if err == nil && len(candidates) > 0 {
			return candidates, nil
		}
	}
	if c.Fallback == nil {
		return nil, nil
	}
	return c.Fallback.Discover(ctx, query)
}
