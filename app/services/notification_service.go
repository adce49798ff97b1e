// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/sartorhq/sartor/config"
)

// NotificationService handles sending notifications via SMS and email
type NotificationService interface {
	SendSMS(mobile, message string) error
	SendEmail(email, subject, message string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	smsProvider   SMSProvider
	emailProvider EmailProvider
}

// SMSProvider interface for SMS sending
type SMSProvider interface {
	SendSMS(mobile, message string) error
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, message string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(smsProvider SMSProvider, emailProvider EmailProvider) NotificationService {
	return &NotificationServiceImpl{
		smsProvider:   smsProvider,
		emailProvider: emailProvider,
	}
}

// SendSMS sends an SMS message to the specified mobile number
func (s *NotificationServiceImpl) SendSMS(mobile, message string) error {
	if s.smsProvider == nil {
		return fmt.Errorf("SMS provider not configured")
	}

	// Validate mobile format, E.164
	if len(mobile) < 8 || mobile[0] != '+' {
		return fmt.Errorf("invalid mobile number format: %s", mobile)
	}

	return s.smsProvider.SendSMS(mobile, message)
}

// SendEmail sends an email to the specified email address
func (s *NotificationServiceImpl) SendEmail(email, subject, message string) error {
	if s.emailProvider == nil {
		return fmt.Errorf("email provider not configured")
	}

	if len(email) == 0 || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %s", email)
	}

	return s.emailProvider.SendEmail(email, subject, message)
}

// SMSProviderImpl sends messages through the configured HTTP SMS gateway
type SMSProviderImpl struct {
	config *config.SMSConfig
	client *http.Client
}

// smsRequest is the gateway request payload
type smsRequest struct {
	SrcNum     string `json:"srcNum"`
	Recipient  string `json:"recipient"`
	Body       string `json:"body"`
	RetryCount int    `json:"retryCount"`
}

// smsResponse is the per-message delivery result returned by the gateway
type smsResponse struct {
	MessageID  int64  `json:"messageId"`
	Recipient  string `json:"recipient"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
}

// NewSMSProvider creates an SMS provider backed by the configured gateway
func NewSMSProvider(cfg *config.SMSConfig) SMSProvider {
	return &SMSProviderImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendSMS delivers a single message through the gateway
func (p *SMSProviderImpl) SendSMS(mobile, message string) error {
	payload := []smsRequest{{
		SrcNum:     p.config.SourceNumber,
		Recipient:  mobile,
		Body:       message,
		RetryCount: p.config.RetryCount,
	}}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS request: %w", err)
	}

	url := fmt.Sprintf("https://%s/api/v1/send", p.config.ProviderDomain)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	var results []smsResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return fmt.Errorf("failed to decode SMS response: %w", err)
	}
	for _, r := range results {
		if r.StatusCode != http.StatusOK || r.Status != "ACCEPTED" {
			return fmt.Errorf("SMS delivery failed for %s: %s (%d)", r.Recipient, r.Status, r.StatusCode)
		}
	}
	return nil
}

// SMTPEmailProvider delivers email through the configured SMTP relay
type SMTPEmailProvider struct {
	config *config.EmailConfig
}

// NewSMTPEmailProvider creates an email provider backed by the configured relay
func NewSMTPEmailProvider(cfg *config.EmailConfig) EmailProvider {
	return &SMTPEmailProvider{config: cfg}
}

// SendEmail delivers a plain-text message through the relay
func (p *SMTPEmailProvider) SendEmail(email, subject, message string) error {
	addr := fmt.Sprintf("%s:%d", p.config.Host, p.config.Port)
	auth := smtp.PlainAuth("", p.config.Username, p.config.Password, p.config.Host)

	from := p.config.FromEmail
	if p.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", p.config.FromName, p.config.FromEmail)
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "From: %s\r\n", from)
	fmt.Fprintf(&body, "To: %s\r\n", email)
	fmt.Fprintf(&body, "Subject: %s\r\n", subject)
	body.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	body.WriteString(message)
	body.WriteString("\r\n")

	if err := smtp.SendMail(addr, auth, p.config.FromEmail, []string{email}, body.Bytes()); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", email, err)
	}
	return nil
}

type MockSMSProvider struct{}

func NewMockSMSProvider() SMSProvider {
	return &MockSMSProvider{}
}

func (p *MockSMSProvider) SendSMS(mobile, message string) error {
	log.Printf("SMS sent to %s: %s", mobile, message)
	return nil
}

type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, message string) error {
	log.Printf("Email sent to %s [%s]: %s", email, subject, message)
	return nil
}
