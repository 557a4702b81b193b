package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"
)

var (
	// ErrGatewayNotConfigured is returned when payment endpoints are hit
	// without gateway credentials. Startup proceeds without them; the
	// feature fails fast instead.
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")

	// ErrSignatureVerification is returned when the gateway's signature
	// check rejects a callback.
	ErrSignatureVerification = errors.New("payment signature verification failed")
)

// GatewayOrder is the handle the gateway (or a synthetic branch) returns
// for a created order.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Gateway is the payment-processor surface the payment service consumes.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency string) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) error
	Configured() bool
	KeyID() string
	// MockMode reports that the configured credentials are placeholders
	// and real API calls must be skipped.
	MockMode() bool
}

// RazorpayGateway talks to Razorpay through its official SDK.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	client    *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	g := &RazorpayGateway{keyID: keyID, keySecret: keySecret}
	if g.Configured() {
		g.client = razorpay.NewClient(keyID, keySecret)
	}
	return g
}

func (g *RazorpayGateway) Configured() bool {
	return g.keyID != "" && g.keySecret != ""
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

func (g *RazorpayGateway) MockMode() bool {
	return strings.Contains(g.keyID, "PLACEHOLDER")
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, currency string) (*GatewayOrder, error) {
	if !g.Configured() {
		return nil, ErrGatewayNotConfigured
	}

	data := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"payment_capture": 1,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	order := &GatewayOrder{
		Amount:   amountPaise,
		Currency: currency,
	}
	if id, ok := body["id"].(string); ok {
		order.ID = id
	}
	if status, ok := body["status"].(string); ok {
		order.Status = status
	}
	return order, nil
}

func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) error {
	if !g.Configured() {
		return ErrGatewayNotConfigured
	}

	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	if !utils.VerifyPaymentSignature(params, signature, g.keySecret) {
		return ErrSignatureVerification
	}
	return nil
}
