// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/civicmitra/seva-backend/config"
	"github.com/civicmitra/seva-backend/utils"
)

// WhatsAppService handles outbound WhatsApp messaging through the Cloud API
type WhatsAppService interface {
	SendText(ctx context.Context, recipient, message string) error
	SendTemplate(ctx context.Context, recipient, templateName string, params []string) error
}

// WhatsAppServiceImpl implements WhatsAppService
type WhatsAppServiceImpl struct {
	config *config.WhatsAppConfig
	client *http.Client
}

// whatsAppMessageRequest is the Cloud API send payload
type whatsAppMessageRequest struct {
	MessagingProduct string                `json:"messaging_product"`
	To               string                `json:"to"`
	Type             string                `json:"type"`
	Text             *whatsAppText         `json:"text,omitempty"`
	Template         *whatsAppTemplate     `json:"template,omitempty"`
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppTemplate struct {
	Name       string              `json:"name"`
	Language   whatsAppLanguage    `json:"language"`
	Components []whatsAppComponent `json:"components,omitempty"`
}

type whatsAppLanguage struct {
	Code string `json:"code"`
}

type whatsAppComponent struct {
	Type       string              `json:"type"`
	Parameters []whatsAppParameter `json:"parameters"`
}

type whatsAppParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// whatsAppMessageResponse is the Cloud API send result
type whatsAppMessageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// NewWhatsAppService creates a new WhatsApp service instance
func NewWhatsAppService(cfg *config.WhatsAppConfig) WhatsAppService {
	return &WhatsAppServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// SendText sends a free-form text message
func (s *WhatsAppServiceImpl) SendText(ctx context.Context, recipient, message string) error {
	payload := whatsAppMessageRequest{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             &whatsAppText{Body: message},
	}
	return s.send(ctx, payload)
}

// SendTemplate sends a pre-approved template message with body parameters
func (s *WhatsAppServiceImpl) SendTemplate(ctx context.Context, recipient, templateName string, params []string) error {
	tmpl := &whatsAppTemplate{
		Name:     templateName,
		Language: whatsAppLanguage{Code: "en"},
	}
	if len(params) > 0 {
		parameters := make([]whatsAppParameter, 0, len(params))
		for _, p := range params {
			parameters = append(parameters, whatsAppParameter{Type: "text", Text: p})
		}
		tmpl.Components = []whatsAppComponent{{Type: "body", Parameters: parameters}}
	}
	payload := whatsAppMessageRequest{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "template",
		Template:         tmpl,
	}
	return s.send(ctx, payload)
}

func (s *WhatsAppServiceImpl) send(ctx context.Context, payload whatsAppMessageRequest) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal WhatsApp request: %w", err)
	}

	url := fmt.Sprintf("https://%s/%s/%s/messages", s.config.ProviderDomain, s.config.APIVersion, s.config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.AccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send WhatsApp request: %w", err)
	}
	defer resp.Body.Close()

	var result whatsAppMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode WhatsApp response: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("WhatsApp delivery failed for %s: %s (%d)", payload.To, result.Error.Message, result.Error.Code)
	}
	if len(result.Messages) == 0 {
		return fmt.Errorf("WhatsApp delivery failed for %s: no message id returned", payload.To)
	}
	return nil
}

// MockWhatsAppService implements WhatsAppService for testing
type MockWhatsAppService struct {
	mu           sync.Mutex
	SentMessages []MockWhatsAppMessage
}

// MockWhatsAppMessage represents a mock WhatsApp message
type MockWhatsAppMessage struct {
	Recipient string
	Template  string
	Message   string
	Params    []string
	SentAt    time.Time
}

// NewMockWhatsAppService creates a new mock WhatsApp service
func NewMockWhatsAppService() *MockWhatsAppService {
	return &MockWhatsAppService{
		SentMessages: make([]MockWhatsAppMessage, 0),
	}
}

// SendText records a mock text message
func (m *MockWhatsAppService) SendText(ctx context.Context, recipient, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentMessages = append(m.SentMessages, MockWhatsAppMessage{
		Recipient: recipient,
		Message:   message,
		SentAt:    utils.UTCNow(),
	})
	return nil
}

// SendTemplate records a mock template message
func (m *MockWhatsAppService) SendTemplate(ctx context.Context, recipient, templateName string, params []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentMessages = append(m.SentMessages, MockWhatsAppMessage{
		Recipient: recipient,
		Template:  templateName,
		Params:    params,
		SentAt:    utils.UTCNow(),
	})
	return nil
}

// GetSentMessages returns a snapshot of the sent mock messages
func (m *MockWhatsAppService) GetSentMessages() []MockWhatsAppMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockWhatsAppMessage, len(m.SentMessages))
	copy(out, m.SentMessages)
	return out
}

// ClearSentMessages clears the sent messages list
func (m *MockWhatsAppService) ClearSentMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentMessages = make([]MockWhatsAppMessage, 0)
}
