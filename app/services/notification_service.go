// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// NotificationService delivers citizen-facing notifications via WhatsApp and email
type NotificationService interface {
	NotifyCitizen(ctx context.Context, phone, message string) error
	SendEmail(email, subject, message string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	whatsapp      WhatsAppService
	emailProvider EmailProvider
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, message string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(whatsapp WhatsAppService, emailProvider EmailProvider) NotificationService {
	return &NotificationServiceImpl{
		whatsapp:      whatsapp,
		emailProvider: emailProvider,
	}
}

// NotifyCitizen sends a WhatsApp message to a citizen's phone number
func (s *NotificationServiceImpl) NotifyCitizen(ctx context.Context, phone, message string) error {
	if s.whatsapp == nil {
		return fmt.Errorf("WhatsApp provider not configured")
	}

	// Validate E.164-ish format
	if len(phone) < 8 || !strings.HasPrefix(phone, "+") {
		return fmt.Errorf("invalid phone number format: %s", phone)
	}

	return s.whatsapp.SendText(ctx, strings.TrimPrefix(phone, "+"), message)
}

// SendEmail sends an email to the specified email address
func (s *NotificationServiceImpl) SendEmail(email, subject, message string) error {
	if s.emailProvider == nil {
		return fmt.Errorf("email provider not configured")
	}

	// Basic email validation
	if len(email) == 0 || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %s", email)
	}

	return s.emailProvider.SendEmail(email, subject, message)
}

type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, message string) error {
	log.Printf("Email sent to %s [%s]: %s", email, subject, message)
	return nil
}

type SMTPEmailProvider struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

func NewSMTPEmailProvider(host string, port int, username, password, fromEmail string) EmailProvider {
	return &SMTPEmailProvider{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

func (p *SMTPEmailProvider) SendEmail(email, subject, message string) error {
	// Implementation would use net/smtp package or a library like gomail

	log.Printf("Sending email via SMTP to %s [%s]: %s", email, subject, message)

	return nil
}
