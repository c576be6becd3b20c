// Package mail delivers rendered invoices by email.
package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"sync"

	"github.com/rezonia/invoice-utils/internal/config"
)

// Attachment is a file attached to a message
type Attachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// Message is one email
type Message struct {
	From        string
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender defines the contract for sending emails.
type Sender interface {
	Send(msg Message) error
}

// BodyData fills the invoice notification body
type BodyData struct {
	SenderEmail string
	SenderName  string
	InvoiceID   int
}

var bodyTemplate = template.Must(template.New("body").Parse(`<html>
<body>
<p>Hello,</p>
<p>Please find attached invoice <strong>{{.InvoiceID}}</strong>{{if .SenderName}} issued by {{.SenderName}}{{end}}.</p>
<p>For questions reply to <a href="mailto:{{.SenderEmail}}">{{.SenderEmail}}</a>.</p>
</body>
</html>
`))

// RenderBody renders the HTML body of an invoice notification
func RenderBody(data BodyData) (string, error) {
	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail body: %w", err)
	}
	return buf.String(), nil
}

// Build encodes msg as a multipart/mixed MIME message
func Build(msg Message) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=utf-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(htmlPart, []byte(msg.HTML)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": a.Name})},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Name})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Content); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "From: %s\r\n", msg.From)
	fmt.Fprintf(&out, "To: %s\r\n", msg.To)
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	out.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&out, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", encoded)
	return err
}

// SendFunc matches smtp.SendMail
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends messages through an SMTP server
type SMTPSender struct {
	cfg      config.MailConfig
	sendMail SendFunc
}

// NewSMTPSender creates a sender for cfg
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

// WithSendFunc replaces the SMTP transport
func (s *SMTPSender) WithSendFunc(fn SendFunc) *SMTPSender {
	s.sendMail = fn
	return s
}

// Send implements Sender. Login is used when both user and password are set.
func (s *SMTPSender) Send(msg Message) error {
	if msg.From == "" {
		msg.From = s.cfg.SenderEmail
	}
	if msg.Subject == "" {
		msg.Subject = s.cfg.Subject
	}
	data, err := Build(msg)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	var auth smtp.Auth
	if s.cfg.LoginUser != "" && s.cfg.LoginPassword != "" {
		auth = smtp.PlainAuth("", s.cfg.LoginUser, s.cfg.LoginPassword, s.cfg.Host)
	}
	if err := s.sendMail(s.cfg.Addr(), auth, msg.From, []string{msg.To}, data); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// InMemorySender records messages instead of sending them.
type InMemorySender struct {
	mu     sync.Mutex
	Outbox []Message
	Err    error
}

// Send records the message, or returns Err when set.
func (m *InMemorySender) Send(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Outbox = append(m.Outbox, msg)
	return nil
}

// Sent returns a copy of the recorded messages
func (m *InMemorySender) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.Outbox...)
}
