package webresearch

import (
	"context"
	"net"
	"regexp"
	"sort"
	"strings"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// fallbackPrefixes are synthesized when a domain has mail exchangers but
// no address appeared on the site.
var fallbackPrefixes = []string{"business", "careers", "contact", "info", "sales", "support"}

var disposableDomains = map[string]bool{
	"10minutemail.com": true,
	"mailinator.com":   true,
	"tempmail.com":     true,
	"yopmail.com":      true,
}

// decisionMakerRoles are matched as substrings of the lowercased site
// text; the list order is the reporting order.
var decisionMakerRoles = []string{
	"ceo", "cto", "cfo",
	"coo", "founder", "co-founder",
	"director", "head organizer", "vp",
	"vice president",
}

// MXResolver is the DNS surface the extractor needs; *net.Resolver
// satisfies it.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Extractor pulls contact data out of crawled site text.
type Extractor struct {
	resolver MXResolver
}

func NewExtractor() *Extractor {
	return &Extractor{resolver: net.DefaultResolver}
}

// WithResolver overrides the DNS resolver; used by tests.
func (x *Extractor) WithResolver(r MXResolver) *Extractor {
	x.resolver = r
	return x
}

// Emails extracts addresses on the company's root domain, validated by
// the presence of a mail exchanger. A domain with no MX record yields no
// addresses; a domain with MX but no on-site addresses yields the
// synthesized role-based set. Results are sorted for determinism.
func (x *Extractor) Emails(ctx context.Context, text, domain string) ([]string, error) {
	root := rootDomain(domain)
	if root == "" || disposableDomains[root] {
		return nil, nil
	}
	if _, err := x.resolver.LookupMX(ctx, root); err != nil {
		return nil, nil
	}

	suffix := "@" + root
	seen := make(map[string]bool)
	for _, match := range emailPattern.FindAllString(text, -1) {
		addr := strings.ToLower(match)
		if strings.HasSuffix(addr, suffix) {
			seen[addr] = true
		}
	}

	if len(seen) == 0 {
		for _, prefix := range fallbackPrefixes {
			seen[prefix+suffix] = true
		}
	}

	emails := make([]string, 0, len(seen))
	for addr := range seen {
		emails = append(emails, addr)
	}
	sort.Strings(emails)
	return emails, nil
}

// Roles reports decision-maker roles mentioned in the text, no names.
func (x *Extractor) Roles(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, role := range decisionMakerRoles {
		if strings.Contains(lower, role) {
			found = append(found, role)
		}
	}
	return found
}

// rootDomain reduces a host to its registrable two-label form.
func rootDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return domain
	}
	return parts[len(parts)-2] + "." + parts[len(parts)-1]
}
