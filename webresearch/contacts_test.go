package webresearch

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"
)

type stubResolver struct {
	mx  []*net.MX
	err error
}

func (s *stubResolver) LookupMX(context.Context, string) ([]*net.MX, error) {
	return s.mx, s.err
}

func okResolver() *stubResolver {
	return &stubResolver{mx: []*net.MX{{Host: "mx.acme.ai."}}}
}

func TestEmails_OnDomainOnly(t *testing.T) {
	x := NewExtractor().WithResolver(okResolver())

	text := "Reach us at Priya@acme.ai or press@othersite.com for media."
	got, err := x.Emails(context.Background(), text, "acme.ai")
	if err != nil {
		t.Fatalf("emails: %v", err)
	}
	want := []string{"priya@acme.ai"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEmails_SynthesizesFallbackSet(t *testing.T) {
	x := NewExtractor().WithResolver(okResolver())

	got, err := x.Emails(context.Background(), "no addresses on this site", "acme.ai")
	if err != nil {
		t.Fatalf("emails: %v", err)
	}
	want := []string{
		"business@acme.ai",
		"careers@acme.ai",
		"contact@acme.ai",
		"info@acme.ai",
		"sales@acme.ai",
		"support@acme.ai",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected fallback set %v, got %v", want, got)
	}
}

func TestEmails_NoMXYieldsNothing(t *testing.T) {
	x := NewExtractor().WithResolver(&stubResolver{err: errors.New("no such host")})

	got, err := x.Emails(context.Background(), "contact@acme.ai", "acme.ai")
	if err != nil {
		t.Fatalf("emails: %v", err)
	}
	if got != nil {
		t.Fatalf("domain without MX must yield no addresses, got %v", got)
	}
}

func TestEmails_DisposableDomainRejected(t *testing.T) {
	x := NewExtractor().WithResolver(okResolver())

	got, err := x.Emails(context.Background(), "a@mailinator.com", "mailinator.com")
	if err != nil {
		t.Fatalf("emails: %v", err)
	}
	if got != nil {
		t.Fatalf("disposable domain must yield no addresses, got %v", got)
	}
}

func TestEmails_SubdomainReducesToRoot(t *testing.T) {
	x := NewExtractor().WithResolver(okResolver())

	got, err := x.Emails(context.Background(), "priya@acme.ai", "www.acme.ai")
	if err != nil {
		t.Fatalf("emails: %v", err)
	}
	if len(got) != 1 || got[0] != "priya@acme.ai" {
		t.Fatalf("expected root-domain match, got %v", got)
	}
}

func TestRoles_ListOrder(t *testing.T) {
	x := NewExtractor()

	text := "Our Founder and CTO spoke with the CEO of a partner firm."
	got := x.Roles(text)
	want := []string{"ceo", "cto", "founder"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRoles_NoMatches(t *testing.T) {
	x := NewExtractor()
	if got := x.Roles("a plain paragraph about shipping"); got != nil {
		t.Fatalf("expected no roles, got %v", got)
	}
}

func TestRootDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"acme.ai", "acme.ai"},
		{"WWW.Acme.AI", "acme.ai"},
		{"a.b.acme.ai", "acme.ai"},
		{"localhost", "localhost"},
	}
	for _, tc := range cases {
		if got := rootDomain(tc.in); got != tc.want {
			t.Fatalf("rootDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
