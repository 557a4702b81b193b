package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"enrollhub/internal/model"
)

// purchaseLimit caps how many completed enrollments a single student may
// hold before checkout stops offering upgrade pricing.
const purchaseLimit = 2

type CheckoutService struct {
	db        *sql.DB
	catalog   *Catalog
	allocator *Allocator
}

func NewCheckoutService(db *sql.DB, catalog *Catalog, allocator *Allocator) *CheckoutService {
	return &CheckoutService{db: db, catalog: catalog, allocator: allocator}
}

// CheckoutResult is what the checkout page needs: the reserved order id,
// and for logged-in users either an upgrade price or the limit flag.
type CheckoutResult struct {
	OrderID      string `json:"order_id"`
	UpgradePrice *int   `json:"upgrade_price,omitempty"`
	LimitReached bool   `json:"limit_reached"`
}

// Begin allocates an order identifier for the selected plan and, when a
// user is known, resolves upgrade pricing against their purchase history.
// userID may be empty for anonymous checkouts.
func (s *CheckoutService) Begin(ctx context.Context, userID, planType, category string) (*CheckoutResult, error) {
	planType = NormalizePlanType(planType)
	category = strings.ToLower(category)

	customID, err := s.allocator.Allocate(ctx, planType, category)
	if err != nil {
		return nil, err
	}

	res := &CheckoutResult{OrderID: customID}

	if userID == "" {
		return res, nil
	}

	var email string
	err = s.db.QueryRowContext(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return res, nil
		}
		return nil, fmt.Errorf("get user email: %w", err)
	}

	count, err := s.paidCount(ctx, email)
	if err != nil {
		return nil, err
	}
	if count >= purchaseLimit {
		res.LimitReached = true
		return res, nil
	}

	res.UpgradePrice, err = s.upgradePrice(ctx, email, planType, category)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *CheckoutService) paidCount(ctx context.Context, email string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE student_email = $1 AND status IN ($2, $3)`,
		email, model.StatusPaid, model.StatusMockPaid,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count purchases: %w", err)
	}
	return count, nil
}

// upgradePrice computes the discounted price for moving from the user's
// most recent paid plan to the selected one. A pricing miss (no prior
// plan, unknown catalog entry, cheaper new plan) means no upgrade offer
// and the caller falls back to full price; persistence failures still
// surface so the caller can retry.
func (s *CheckoutService) upgradePrice(ctx context.Context, email, planType, category string) (*int, error) {
	var planName, planCategory sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT plan_name, plan_category
		FROM payments
		WHERE student_email = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, email, model.StatusPaid, model.StatusMockPaid).Scan(&planName, &planCategory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last paid plan: %w", err)
	}

	oldType := PlanTypeOf(planName.String)
	oldCategory := strings.ToLower(planCategory.String)

	oldPrice, ok := s.catalog.Price(oldCategory, oldType)
	if !ok {
		return nil, nil
	}
	newPrice, ok := s.catalog.Price(category, planType)
	if !ok {
		return nil, nil
	}

	// New plan at or above the old one is an upgrade or a swap; a zero
	// difference is covered for free. Cheaper plans are charged in full.
	if newPrice >= oldPrice && oldPrice > 0 {
		diff := newPrice - oldPrice
		return &diff, nil
	}
	return nil, nil
}
