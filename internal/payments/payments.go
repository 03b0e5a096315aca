// Package payments abstracts the payment gateway behind a two-method Provider.
// Providers are interchangeable stubs selected once at startup; the real
// gateway integration lives outside this core.
package payments

import (
	"github.com/google/uuid"

	"bookstore/internal/config"
)

// Session is the client-facing payload for a newly created payment session.
type Session struct {
	Provider    string         `json:"provider"`
	SessionID   string         `json:"session_id"`
	AmountCents int            `json:"amount_cents"`
	Currency    string         `json:"currency"`
	Data        map[string]any `json:"data,omitempty"`
}

// Event is a normalised webhook event. TransactionID is empty when the
// payload carries no recognisable transaction.
type Event struct {
	Type          string
	TransactionID string
}

// Provider creates payment sessions and verifies webhook callbacks.
type Provider interface {
	Name() string
	CreateSession(userID, bookID uuid.UUID, amountCents int, currency string) (*Session, error)
	VerifyWebhook(payload []byte, headers map[string]string) (*Event, error)
}

// Select returns the provider named by configuration, falling back to the
// mock when credentials for the named provider are missing.
func Select(cfg *config.Settings) Provider {
	switch cfg.PaymentProvider {
	case "stripe":
		if cfg.StripeSecretKey != "" {
			return &StripeProvider{SecretKey: cfg.StripeSecretKey, WebhookSecret: cfg.StripeWebhookSecret}
		}
	case "razorpay":
		if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
			return &RazorpayProvider{
				KeyID:         cfg.RazorpayKeyID,
				KeySecret:     cfg.RazorpayKeySecret,
				WebhookSecret: cfg.RazorpayWebhookSecret,
			}
		}
	}
	return &MockProvider{}
}

// ─── Mock ─────────────────────────────────────────────────────────────────────

// MockProvider accepts every session and reports every webhook as a success.
type MockProvider struct{}

func (MockProvider) Name() string { return "mock" }

func (MockProvider) CreateSession(userID, bookID uuid.UUID, amountCents int, currency string) (*Session, error) {
	return &Session{
		Provider:    "mock",
		SessionID:   uuid.NewString(),
		AmountCents: amountCents,
		Currency:    currency,
	}, nil
}

func (MockProvider) VerifyWebhook(payload []byte, headers map[string]string) (*Event, error) {
	return &Event{Type: "payment.succeeded", TransactionID: uuid.NewString()}, nil
}

// ─── Stripe ───────────────────────────────────────────────────────────────────

// StripeProvider is a stub keeping the Stripe session/webhook shape.
type StripeProvider struct {
	SecretKey     string
	WebhookSecret string
}

func (StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) CreateSession(userID, bookID uuid.UUID, amountCents int, currency string) (*Session, error) {
	return &Session{
		Provider:    "stripe",
		SessionID:   uuid.NewString(),
		AmountCents: amountCents,
		Currency:    currency,
		Data:        map[string]any{"checkout_url": "https://checkout.stripe.com/session"},
	}, nil
}

func (p *StripeProvider) VerifyWebhook(payload []byte, headers map[string]string) (*Event, error) {
	return &Event{Type: "payment_intent.succeeded", TransactionID: uuid.NewString()}, nil
}

// ─── Razorpay ─────────────────────────────────────────────────────────────────

type RazorpayProvider struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
}

func (RazorpayProvider) Name() string { return "razorpay" }

func (p *RazorpayProvider) CreateSession(userID, bookID uuid.UUID, amountCents int, currency string) (*Session, error) {
	return &Session{
		Provider:    "razorpay",
		SessionID:   uuid.NewString(),
		AmountCents: amountCents,
		Currency:    currency,
	}, nil
}

func (p *RazorpayProvider) VerifyWebhook(payload []byte, headers map[string]string) (*Event, error) {
	return &Event{Type: "payment.captured", TransactionID: uuid.NewString()}, nil
}
