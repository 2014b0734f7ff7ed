package services

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// SMTPConfig addresses the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NotificationService sends operator mail. Only password reset mail exists today.
type NotificationService interface {
	SendEmail(ctx context.Context, recipient, subject, body string) error
	SendPasswordReset(ctx context.Context, recipient, resetURL string) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type notificationService struct {
	cfg      SMTPConfig
	reset    *template.Template
	sendMail sendMailFunc
}

var passwordResetTemplate = template.Must(template.New("password_reset").Parse(`Hello,

Someone asked to reset the password of your InvoiceFlow account ({{.Email}}).
Open the link below within {{.ValidFor}} to choose a new password:

{{.URL}}

If you did not ask for this, you can ignore this mail.
`))

func NewNotificationService(cfg SMTPConfig) NotificationService {
	return &notificationService{cfg: cfg, reset: passwordResetTemplate, sendMail: smtp.SendMail}
}

func (s *notificationService) SendEmail(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(recipient, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("invalid mail header")
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	if err := s.sendMail(addr, auth, s.cfg.From, []string{recipient}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *notificationService) SendPasswordReset(ctx context.Context, recipient, resetURL string) error {
	var body bytes.Buffer
	err := s.reset.Execute(&body, map[string]string{
		"Email":    recipient,
		"URL":      resetURL,
		"ValidFor": "1 hour",
	})
	if err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return s.SendEmail(ctx, recipient, "Reset your InvoiceFlow password", body.String())
}
