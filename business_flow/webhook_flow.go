package businessflow

import (
	"context"
	"log"
	"strings"

	"github.com/civicmitra/seva-backend/app/dto"
	"github.com/civicmitra/seva-backend/config"
	"github.com/civicmitra/seva-backend/repository"
	"github.com/civicmitra/seva-backend/utils"
)

// WebhookFlow handles inbound WhatsApp Cloud API traffic. A text message
// to a company's WhatsApp number becomes a grievance for that company.
type WebhookFlow interface {
	// VerifyChallenge implements the Cloud API subscription handshake,
	// returning the challenge string to echo back.
	VerifyChallenge(mode, token, challenge string) (string, error)
	// ProcessInbound walks the webhook envelope and registers a grievance
	// for every text message. Non-text messages are acknowledged and
	// dropped. Processing is per-message; one bad message does not fail
	// the batch.
	ProcessInbound(ctx context.Context, payload *dto.WhatsAppWebhookPayload) (*dto.WebhookAckResponse, error)
}

// WebhookFlowImpl implements WebhookFlow
type WebhookFlowImpl struct {
	companyRepo   repository.CompanyRepository
	grievanceFlow GrievanceFlow
	cfg           *config.WhatsAppConfig
}

// NewWebhookFlow creates a new webhook flow instance
func NewWebhookFlow(
	companyRepo repository.CompanyRepository,
	grievanceFlow GrievanceFlow,
	cfg *config.WhatsAppConfig,
) WebhookFlow {
	return &WebhookFlowImpl{
		companyRepo:   companyRepo,
		grievanceFlow: grievanceFlow,
		cfg:           cfg,
	}
}

// VerifyChallenge checks the verify token the Cloud API sends during
// webhook subscription
func (f *WebhookFlowImpl) VerifyChallenge(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != f.cfg.VerifyToken {
		return "", NewBusinessError("WEBHOOK_VERIFY_FAILED", "Webhook verification failed", ErrVerifyTokenWrong)
	}
	return challenge, nil
}

// ProcessInbound registers a grievance per inbound text message. The
// company is resolved from the receiving phone number ID, which is how
// one webhook endpoint serves every tenant.
func (f *WebhookFlowImpl) ProcessInbound(ctx context.Context, payload *dto.WhatsAppWebhookPayload) (*dto.WebhookAckResponse, error) {
	if payload == nil || payload.Object != "whatsapp_business_account" {
		return &dto.WebhookAckResponse{Status: "ignored"}, nil
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			f.processValue(ctx, &change.Value)
		}
	}

	// The Cloud API retries on non-2xx, so acknowledge even when
	// individual messages failed; failures are logged where they happen.
	return &dto.WebhookAckResponse{Status: "ok"}, nil
}

func (f *WebhookFlowImpl) processValue(ctx context.Context, value *dto.WhatsAppValue) {
	company, err := f.companyRepo.ByWhatsAppPhoneNumberID(ctx, value.Metadata.PhoneNumberID)
	if err != nil || company == nil || !utils.IsTrue(company.IsActive) {
		log.Printf("webhook: no active company for phone number id %s", value.Metadata.PhoneNumberID)
		return
	}

	names := contactNames(value.Contacts)

	for _, msg := range value.Messages {
		if msg.Type != "text" || msg.Text == nil {
			continue
		}
		body := strings.TrimSpace(msg.Text.Body)
		if body == "" {
			continue
		}

		subject := body
		if runes := []rune(subject); len(runes) > maxSubjectLen {
			subject = string(runes[:maxSubjectLen])
		}

		req := &dto.CreateGrievanceRequest{
			CompanyID:    company.ID,
			CitizenPhone: "+" + strings.TrimPrefix(msg.From, "+"),
			Subject:      subject,
			Description:  body,
			Channel:      "whatsapp",
		}
		if name, ok := names[msg.From]; ok {
			req.CitizenName = &name
		}

		if _, err := f.grievanceFlow.CreateGrievance(ctx, req, NewClientMetadata("whatsapp-webhook", "")); err != nil {
			log.Printf("webhook: grievance intake failed for message %s: %v", msg.ID, err)
		}
	}
}

func contactNames(contacts []dto.WhatsAppContact) map[string]string {
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		if n := strings.TrimSpace(c.Profile.Name); n != "" {
			names[c.WaID] = n
		}
	}
	return names
}
