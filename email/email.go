// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package email sends conversation transcripts through an authenticated SMTP
// relay.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/textproto"
	"strings"
	"time"

	"github.com/jcodagnone/placesbot/utils/htmlutils"
	"github.com/wneessen/go-mail"
)

var (
	// ErrMissingCredentials is returned when the SMTP user or app password is not configured.
	ErrMissingCredentials = errors.New("GMAIL_USER and GMAIL_APP_PASSWORD must be set")

	// ErrAuthentication is returned when the relay rejects the credentials.
	ErrAuthentication = errors.New("SMTP authentication failed")

	// ErrEmptyTranscript is returned when there is nothing to send.
	ErrEmptyTranscript = errors.New("transcript is empty")
)

const (
	DefaultHost = "smtp.gmail.com"
	DefaultPort = 587
)

// Options configures a Mailer.
type Options struct {
	Host     string
	Port     int
	Username string
	Password string

	// To defaults to Username
	To string

	Timeout time.Duration
}

// Mailer sends transcripts over STARTTLS.
type Mailer struct {
	opts Options
	now  func() time.Time
}

// New validates the credentials and returns a Mailer. No connection is made.
func New(opts Options) (*Mailer, error) {
	if strings.TrimSpace(opts.Username) == "" || strings.TrimSpace(opts.Password) == "" {
		return nil, ErrMissingCredentials
	}

	if opts.Host == "" {
		opts.Host = DefaultHost
	}

	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	if opts.To == "" {
		opts.To = opts.Username
	}

	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Mailer{opts: opts, now: time.Now}, nil
}

// Recipient returns the address transcripts are sent to.
func (m *Mailer) Recipient() string {
	return m.opts.To
}

func (m *Mailer) client() (*mail.Client, error) {
	return mail.NewClient(m.opts.Host,
		mail.WithPort(m.opts.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.opts.Username),
		mail.WithPassword(m.opts.Password),
		mail.WithTimeout(m.opts.Timeout),
	)
}

// Check dials the relay and authenticates without sending anything.
func (m *Mailer) Check(ctx context.Context) error {
	c, err := m.client()
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	if err := c.DialWithContext(ctx); err != nil {
		return classify(err)
	}

	return c.Close()
}

// Send emails the transcript as HTML with a plain-text alternative.
func (m *Mailer) Send(ctx context.Context, transcript, sessionID string) error {
	msg, err := m.message(transcript, sessionID)
	if err != nil {
		return err
	}

	c, err := m.client()
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}

	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return classify(err)
	}

	return nil
}

func (m *Mailer) message(transcript, sessionID string) (*mail.Msg, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	body, err := m.htmlBody(transcript)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.opts.Username); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.opts.Username, err)
	}

	if err := msg.To(m.opts.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", m.opts.To, err)
	}

	now := m.now()
	subject := "📊 Places recommendations - " + now.Format("2006-01-02 15:04")

	if sessionID != "" {
		subject += " (" + sessionID + ")"
	}

	msg.Subject(subject)
	msg.SetDateWithValue(now)
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextPlain, transcript)
	msg.AddAlternativeString(mail.TypeTextHTML, body)

	return msg, nil
}

var bodyTemplate = template.Must(template.New("email").Parse(`<html>
<head>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
.content { padding: 20px; background-color: #ffffff; }
.footer { background-color: #f8f9fa; padding: 15px; text-align: center; font-size: 12px; color: #666; border-radius: 0 0 8px 8px; }
</style>
</head>
<body>
<div style="max-width: 800px; margin: 0 auto; border: 1px solid #e0e0e0; border-radius: 8px;">
<div class="header">
<h1 style="margin: 0;">🌍 Places recommendations</h1>
<p style="margin: 10px 0 0 0; opacity: 0.9;">Generated on {{.Date}}</p>
</div>
<div class="content">
{{.Content}}
</div>
<div class="footer">
<p>📈 LLM generated recommendations | 🤖 Google Maps generated coordinates</p>
</div>
</div>
</body>
</html>
`))

func (m *Mailer) htmlBody(transcript string) (string, error) {
	content, err := htmlutils.Render(htmlutils.TranscriptToHTML(transcript))
	if err != nil {
		return "", fmt.Errorf("rendering transcript: %w", err)
	}

	var buf bytes.Buffer

	err = bodyTemplate.Execute(&buf, struct {
		Date    string
		Content template.HTML
	}{
		Date: m.now().Format("January 02, 2006 at 03:04 PM"),
		// text nodes are escaped by the renderer
		Content: template.HTML(content), //nolint:gosec
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// classify maps SMTP failures to ErrAuthentication when the relay rejected
// the credentials.
func classify(err error) error {
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) && (tpErr.Code == 535 || tpErr.Code == 534) {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	if strings.Contains(strings.ToLower(err.Error()), "authentication") ||
		strings.Contains(err.Error(), "535") {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	return fmt.Errorf("sending email: %w", err)
}
