package outreach

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

func stubbedMailer(t *testing.T, sendErr error) (*SMTPMailer, *capturedSend) {
	t.Helper()
	m, err := NewSMTPMailer(SMTPConfig{
		Host:     "smtp.test",
		Port:     "587",
		Username: "priya@leadflow.io",
		Password: "secret",
		FromName: "Priya",
	})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}

	rec := &capturedSend{}
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		rec.addr = addr
		rec.from = from
		rec.to = to
		rec.msg = string(msg)
		return sendErr
	}
	m = m.WithIDGenerator(func() string { return "fixed-id" })
	return m, rec
}

type capturedSend struct {
	addr string
	from string
	to   []string
	msg  string
}

func TestSend_BuildsMessage(t *testing.T) {
	m, rec := stubbedMailer(t, nil)

	messageID, err := m.Send(context.Background(), "contact@acme.ai", "Hello", "Body text")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if messageID != "<fixed-id@leadflow.io>" {
		t.Fatalf("unexpected message id %q", messageID)
	}
	if rec.addr != "smtp.test:587" || rec.from != "priya@leadflow.io" {
		t.Fatalf("unexpected transport call: addr=%q from=%q", rec.addr, rec.from)
	}
	if len(rec.to) != 1 || rec.to[0] != "contact@acme.ai" {
		t.Fatalf("unexpected recipients: %v", rec.to)
	}
	for _, want := range []string{
		"From: Priya <priya@leadflow.io>\r\n",
		"To: contact@acme.ai\r\n",
		"Subject: Hello\r\n",
		"Message-ID: <fixed-id@leadflow.io>\r\n",
		"Content-Type: text/plain; charset=utf-8\r\n",
		"\r\n\r\nBody text\r\n",
	} {
		if !strings.Contains(rec.msg, want) {
			t.Fatalf("message missing %q:\n%s", want, rec.msg)
		}
	}
}

func TestSend_TransportError(t *testing.T) {
	m, _ := stubbedMailer(t, errors.New("connection refused"))

	if _, err := m.Send(context.Background(), "contact@acme.ai", "Hello", "Body"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestNewSMTPMailer_Validation(t *testing.T) {
	if _, err := NewSMTPMailer(SMTPConfig{Host: "smtp.test"}); err == nil {
		t.Fatalf("expected error for missing username")
	}
	if _, err := NewSMTPMailer(SMTPConfig{Username: "a@b.c"}); err == nil {
		t.Fatalf("expected error for missing host")
	}

	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.test", Username: "a@b.c"})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if m.cfg.Port != "587" {
		t.Fatalf("expected default port 587, got %q", m.cfg.Port)
	}
}

func TestSenderDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"priya@leadflow.io", "leadflow.io"},
		{"no-at-sign", "localhost"},
	}
	for _, tc := range cases {
		if got := senderDomain(tc.in); got != tc.want {
			t.Fatalf("senderDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
