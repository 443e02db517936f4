// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/civicmitra/seva-backend/app/dto"
	businessflow "github.com/civicmitra/seva-backend/business_flow"
	"github.com/gofiber/fiber/v3"
)

// WebhookHandlerInterface defines the contract for WhatsApp webhook handlers
type WebhookHandlerInterface interface {
	Verify(c fiber.Ctx) error
	Receive(c fiber.Ctx) error
}

// WebhookHandler handles inbound WhatsApp Cloud API webhooks
type WebhookHandler struct {
	flow businessflow.WebhookFlow
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(flow businessflow.WebhookFlow) *WebhookHandler {
	return &WebhookHandler{flow: flow}
}

// Verify Webhook
// @Description WhatsApp Cloud API subscription handshake. Echoes hub.challenge when the verify token matches.
// @Tags Webhooks
// @Produce plain
// @Param hub.mode query string true "Must be subscribe"
// @Param hub.verify_token query string true "Configured verify token"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string "Challenge echoed"
// @Failure 403 {string} string "Verification failed"
// @Router /api/v1/webhooks/whatsapp [get]
func (h *WebhookHandler) Verify(c fiber.Ctx) error {
	challenge, err := h.flow.VerifyChallenge(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		return c.Status(fiber.StatusForbidden).SendString("verification failed")
	}
	return c.Status(fiber.StatusOK).SendString(challenge)
}

// Receive Webhook
// @Description Accept a WhatsApp Cloud API message batch. Each text message becomes a grievance for the company owning the receiving number.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param payload body dto.WhatsAppWebhookPayload true "Webhook envelope"
// @Success 200 {object} dto.WebhookAckResponse "Acknowledged"
// @Failure 400 {object} dto.APIResponse "Malformed payload"
// @Router /api/v1/webhooks/whatsapp [post]
func (h *WebhookHandler) Receive(c fiber.Ctx) error {
	var payload dto.WhatsAppWebhookPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{
			Success: false,
			Message: "Invalid webhook payload",
			Error:   dto.ErrorDetail{Code: "INVALID_PAYLOAD", Details: err.Error()},
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := h.flow.ProcessInbound(ctx, &payload)
	if err != nil {
		// Return 200 anyway; the Cloud API retries non-2xx responses and
		// a payload we cannot process will not improve on retry.
		return c.Status(fiber.StatusOK).JSON(dto.WebhookAckResponse{Status: "error"})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
