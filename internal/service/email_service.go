package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/queue"
)

// EmailService sends operator alerts and recipient notifications over SMTP.
type EmailService struct {
	cfg    *config.EmailConfig
	alerts *config.AlertsConfig
}

// NewEmailService creates the email service.
func NewEmailService(cfg *config.EmailConfig, alerts *config.AlertsConfig) *EmailService {
	return &EmailService{cfg: cfg, alerts: alerts}
}

// SendOperatorAlert delivers a policy-violation or failure alert to the
// configured operator address.
func (s *EmailService) SendOperatorAlert(payload queue.OperatorAlertPayload) error {
	if s.alerts == nil || strings.TrimSpace(s.alerts.OperatorEmail) == "" {
		return ErrEmailServiceNotConfigured
	}
	subject := fmt.Sprintf("Shipping alert %s: %s", payload.OrderName, payload.Reason)
	var body bytes.Buffer
	fmt.Fprintf(&body, "Order: %s (id %d)\n", payload.OrderName, payload.OrderID)
	fmt.Fprintf(&body, "Destination: %s (%s)\n", payload.CountryName, payload.CountryCode)
	fmt.Fprintf(&body, "Reason: %s\n", payload.Reason)
	if payload.Tag != "" {
		fmt.Fprintf(&body, "Tag found: %s\n", payload.Tag)
	}
	if payload.SuggestedTag != "" {
		fmt.Fprintf(&body, "Suggested tag: %s\n", payload.SuggestedTag)
	}
	if payload.Detail != "" {
		fmt.Fprintf(&body, "\nDetail:\n%s\n", payload.Detail)
	}
	return s.sendTextEmail(s.alerts.OperatorEmail, subject, body.String())
}

// SendRecipientNotify delivers the delivery notification to the buyer.
func (s *EmailService) SendRecipientNotify(payload queue.RecipientNotifyPayload) error {
	subject := fmt.Sprintf("Your order %s has been delivered", payload.OrderName)
	var body bytes.Buffer
	fmt.Fprintf(&body, "Good news: your order %s has been delivered.\n\n", payload.OrderName)
	if payload.Tracking != "" {
		fmt.Fprintf(&body, "Tracking number: %s\n", payload.Tracking)
	}
	if payload.TrackingURL != "" {
		fmt.Fprintf(&body, "Track it here: %s\n", payload.TrackingURL)
	}
	return s.sendTextEmail(payload.Email, subject, body.String())
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if s.cfg.Host == "" || s.cfg.Port == 0 || s.cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}

	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	msg := buildEmailMessage(from, toEmail, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if s.cfg.UseSSL {
		return sendMailWithSSL(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	}
	if s.cfg.UseTLS {
		return sendMailWithStartTLS(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
	}
	return sendMailPlain(addr, auth, s.cfg.Host, s.cfg.From, []string{toEmail}, []byte(msg))
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.String()
}

func sendMailWithSSL(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}

	return sendSMTPData(client, from, to, msg)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
