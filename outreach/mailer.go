// Package outreach implements mail transport and the reply ledger.
package outreach

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPConfig carries the transport identity for outbound mail.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

// SMTPMailer sends plain-text messages with an explicit Message-ID so
// replies can be correlated later.
type SMTPMailer struct {
	cfg   SMTPConfig
	idGen func() string
	now   func() time.Time
	send  func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.Username == "" {
		return nil, fmt.Errorf("outreach: smtp host and username required")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &SMTPMailer{
		cfg:   cfg,
		idGen: func() string { return uuid.NewString() },
		now:   time.Now,
		send:  smtp.SendMail,
	}, nil
}

// WithIDGenerator overrides Message-ID generation; used by tests.
func (m *SMTPMailer) WithIDGenerator(gen func() string) *SMTPMailer {
	m.idGen = gen
	return m
}

// Send transmits one message and returns its Message-ID. The context is
// accepted for interface symmetry; net/smtp has no context support, so
// cancellation falls to the dialer's own timeout.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", m.idGen(), senderDomain(m.cfg.Username))
	msg := m.buildMessage(messageID, to, subject, body)

	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.cfg.Username, []string{to}, msg); err != nil {
		return "", fmt.Errorf("outreach: send to %s: %w", to, err)
	}
	return messageID, nil
}

func (m *SMTPMailer) buildMessage(messageID, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.Username)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&b, "Date: %s\r\n", m.now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func senderDomain(username string) string {
	if _, domain, ok := strings.Cut(username, "@"); ok && domain != "" {
		return domain
	}
	return "localhost"
}
