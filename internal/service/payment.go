package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"enrollhub/internal/model"
)

const (
	// mockPaymentPrefix tags simulated payments issued by the frontend's
	// test flow; they bypass signature verification entirely.
	mockPaymentPrefix = "pay_mock_"

	// freeOrderPrefix tags synthetic zero-cost orders (free upgrades).
	freeOrderPrefix = "order_free_"

	mockOrderPrefix = "order_mock_"

	failSafePrefix = "FS_"
)

type StudentDetails struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Identifier string `json:"identifier"`
	Phone      string `json:"phone"`
}

// EmailOrIdentifier returns the student's email, tolerating the frontend
// sending it under the login-identifier key.
func (s StudentDetails) EmailOrIdentifier() string {
	if s.Identifier != "" {
		return s.Identifier
	}
	return s.Email
}

type PlanDetails struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type CreateOrderRequest struct {
	AmountPaise int64          `json:"amount"`
	Student     StudentDetails `json:"student_details"`
	Plan        PlanDetails    `json:"plan_details"`
	CustomID    string         `json:"custom_id"`
}

type CreateOrderResult struct {
	Order *GatewayOrder `json:"order"`
	Key   string        `json:"key"`
}

type VerifyRequest struct {
	RazorpayPaymentID string         `json:"razorpay_payment_id"`
	RazorpayOrderID   string         `json:"razorpay_order_id"`
	RazorpaySignature string         `json:"razorpay_signature"`
	CustomID          string         `json:"custom_id"`
	Student           StudentDetails `json:"student_details"`
	Plan              PlanDetails    `json:"plan_details"`
}

type PaymentService struct {
	db      *sql.DB
	gateway Gateway
}

func NewPaymentService(db *sql.DB, gateway Gateway) *PaymentService {
	return &PaymentService{db: db, gateway: gateway}
}

// CreateOrder enriches the reserved payment row with the submitted
// student and plan details and obtains a gateway order for it: a real one
// through the gateway, or a synthetic one for zero-cost and mock-mode
// flows.
func (s *PaymentService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if !s.gateway.Configured() {
		return nil, ErrGatewayNotConfigured
	}

	if req.CustomID != "" {
		if err := s.enrich(ctx, req); err != nil {
			return nil, err
		}
	}

	var (
		order *GatewayOrder
		err   error
	)
	switch {
	case req.AmountPaise == 0:
		// Free upgrade: no gateway round trip, born already paid.
		order = &GatewayOrder{
			ID:       fmt.Sprintf("%s%d", freeOrderPrefix, time.Now().Unix()),
			Amount:   0,
			Currency: "INR",
			Status:   "paid",
		}
	case s.gateway.MockMode():
		order = &GatewayOrder{
			ID:       fmt.Sprintf("%s%d", mockOrderPrefix, time.Now().Unix()),
			Amount:   req.AmountPaise,
			Currency: "INR",
			Status:   "created",
		}
	default:
		order, err = s.gateway.CreateOrder(ctx, req.AmountPaise, "INR")
		if err != nil {
			return nil, err
		}
	}

	if req.CustomID != "" {
		_, err = s.db.ExecContext(ctx,
			`UPDATE payments SET razorpay_order_id = $1 WHERE custom_id = $2`,
			order.ID, req.CustomID,
		)
		if err != nil {
			return nil, fmt.Errorf("save gateway order id: %w", err)
		}
	}

	return &CreateOrderResult{Order: order, Key: s.gateway.KeyID()}, nil
}

// enrich writes the checkout payload onto the reserved row and moves it
// to CREATED. A missing row is tolerated: reconciliation's fail-safe path
// covers it later.
func (s *PaymentService) enrich(ctx context.Context, req CreateOrderRequest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM payments WHERE custom_id = $1 FOR UPDATE`,
		req.CustomID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get payment: %w", err)
	}

	if !model.StatusAdvances(status, model.StatusCreated) {
		status = "" // keep current status, only refresh details
	} else {
		status = model.StatusCreated
	}

	if status != "" {
		_, err = tx.ExecContext(ctx, `
			UPDATE payments
			SET amount = $1, student_name = $2, student_email = $3, student_phone = $4,
			    plan_name = $5, plan_category = $6, status = $7
			WHERE custom_id = $8
		`, float64(req.AmountPaise)/100, req.Student.Name, req.Student.EmailOrIdentifier(),
			req.Student.Phone, req.Plan.Name, req.Plan.Category, status, req.CustomID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE payments
			SET amount = $1, student_name = $2, student_email = $3, student_phone = $4,
			    plan_name = $5, plan_category = $6
			WHERE custom_id = $7
		`, float64(req.AmountPaise)/100, req.Student.Name, req.Student.EmailOrIdentifier(),
			req.Student.Phone, req.Plan.Name, req.Plan.Category, req.CustomID)
	}
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	return tx.Commit()
}

// resolvedPayment is the slice of a payment row reconciliation works on.
type resolvedPayment struct {
	id             string
	customID       string
	status         string
	gatewayOrderID string
}

// Reconcile processes a payment-gateway callback and transitions the
// matching order. It resolves by gateway order id, then custom id, then
// synthesizes a fail-safe record so a completed payment is never dropped.
// Returns the custom id of the resolved order.
func (s *PaymentService) Reconcile(ctx context.Context, req VerifyRequest) (string, error) {
	if !s.gateway.Configured() {
		return "", ErrGatewayNotConfigured
	}

	payment, err := s.resolve(ctx, req)
	if err != nil {
		return "", err
	}

	if payment == nil && !strings.HasPrefix(req.RazorpayPaymentID, mockPaymentPrefix) {
		payment, err = s.failSafeCreate(ctx, req)
		if err != nil {
			return "", err
		}
	}

	switch {
	case strings.HasPrefix(req.RazorpayPaymentID, mockPaymentPrefix):
		// Simulated payment: no signature to verify.
		if payment != nil {
			if err := s.finalize(ctx, payment, model.StatusMockPaid, req.RazorpayPaymentID, ""); err != nil {
				return "", err
			}
			return payment.customID, nil
		}
		return "", nil

	case payment != nil && strings.HasPrefix(payment.gatewayOrderID, freeOrderPrefix):
		// Zero-cost order: counts as truly paid, payment id may be empty.
		if err := s.finalize(ctx, payment, model.StatusPaid, req.RazorpayPaymentID, ""); err != nil {
			return "", err
		}
		return payment.customID, nil
	}

	if err := s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
		return "", err
	}

	if payment != nil {
		if err := s.finalize(ctx, payment, model.StatusPaid, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
			return "", err
		}
		return payment.customID, nil
	}
	return "", nil
}

func (s *PaymentService) resolve(ctx context.Context, req VerifyRequest) (*resolvedPayment, error) {
	if req.RazorpayOrderID != "" {
		p, err := s.lookup(ctx, `razorpay_order_id`, req.RazorpayOrderID)
		if err != nil || p != nil {
			return p, err
		}
	}
	if req.CustomID != "" {
		return s.lookup(ctx, `custom_id`, req.CustomID)
	}
	return nil, nil
}

func (s *PaymentService) lookup(ctx context.Context, column, value string) (*resolvedPayment, error) {
	var p resolvedPayment
	var gatewayOrderID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, custom_id, status, razorpay_order_id FROM payments WHERE `+column+` = $1`,
		value,
	).Scan(&p.id, &p.customID, &p.status, &gatewayOrderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup payment by %s: %w", column, err)
	}
	p.gatewayOrderID = gatewayOrderID.String
	return &p, nil
}

// failSafeCreate synthesizes an order record for a real payment that has
// no matching row, so the money is never silently dropped. The checkout
// reservation is not guaranteed to have happened or been linked before
// the callback arrives.
func (s *PaymentService) failSafeCreate(ctx context.Context, req VerifyRequest) (*resolvedPayment, error) {
	customID := req.CustomID
	if customID == "" {
		customID = failSafePrefix + uuid.NewString()[:8]
	}

	slog.Warn("fail-safe triggered: creating missing payment record",
		"custom_id", customID, "payment_id", req.RazorpayPaymentID)

	p := &resolvedPayment{customID: customID, status: model.StatusCreated, gatewayOrderID: req.RazorpayOrderID}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO payments (custom_id, status, amount, student_name, student_email, student_phone,
		                      plan_name, plan_category, razorpay_order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
		RETURNING id
	`, customID, model.StatusCreated, req.Plan.Price, req.Student.Name, req.Student.Email,
		req.Student.Phone, req.Plan.Name, req.Plan.Category, req.RazorpayOrderID,
	).Scan(&p.id)
	if err != nil {
		return nil, fmt.Errorf("fail-safe insert: %w", err)
	}
	return p, nil
}

// finalize moves the payment to its terminal status and records the
// gateway identifiers. The status only moves forward; a replayed callback
// refreshes the identifiers without regressing the record.
func (s *PaymentService) finalize(ctx context.Context, p *resolvedPayment, status, paymentID, signature string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM payments WHERE id = $1 FOR UPDATE`,
		p.id,
	).Scan(&current)
	if err != nil {
		return fmt.Errorf("get payment status: %w", err)
	}

	if model.StatusAdvances(current, status) {
		_, err = tx.ExecContext(ctx,
			`UPDATE payments SET status = $1, razorpay_payment_id = $2, razorpay_signature = $3 WHERE id = $4`,
			status, paymentID, signature, p.id,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE payments SET razorpay_payment_id = $1, razorpay_signature = $2 WHERE id = $3`,
			paymentID, signature, p.id,
		)
	}
	if err != nil {
		return fmt.Errorf("finalize payment: %w", err)
	}

	return tx.Commit()
}
