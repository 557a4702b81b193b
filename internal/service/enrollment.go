package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"enrollhub/internal/model"
)

var ErrEnrollmentNotFound = errors.New("enrollment not found")

type EnrollmentService struct {
	db      *sql.DB
	catalog *Catalog
}

func NewEnrollmentService(db *sql.DB, catalog *Catalog) *EnrollmentService {
	return &EnrollmentService{db: db, catalog: catalog}
}

// ActivePlan is the plan shown on the user's profile.
type ActivePlan struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	CustomID string `json:"custom_id"`
}

// ActivePlan returns the user's latest paid enrollment, preferring real
// payments over mock ones. The phone number is the link between the user
// account and payment records.
func (s *EnrollmentService) ActivePlan(ctx context.Context, phone string) (*ActivePlan, error) {
	for _, status := range []string{model.StatusPaid, model.StatusMockPaid} {
		var plan ActivePlan
		var name, category sql.NullString
		err := s.db.QueryRowContext(ctx, `
			SELECT plan_name, plan_category, custom_id
			FROM payments
			WHERE student_phone = $1 AND status = $2
			ORDER BY created_at DESC
			LIMIT 1
		`, phone, status).Scan(&name, &category, &plan.CustomID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get active plan: %w", err)
		}
		plan.Name = name.String
		plan.Category = category.String
		return &plan, nil
	}
	return nil, nil
}

// EnrollmentSummary is the post-payment confirmation: a welcome for first
// purchases, an upgrade note otherwise, plus the community invite link.
type EnrollmentSummary struct {
	OrderID       string `json:"order_id"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	PlanName      string `json:"plan_name"`
	Upgrade       bool   `json:"upgrade"`
	CommunityLink string `json:"community_link,omitempty"`
}

func (s *EnrollmentService) Summary(ctx context.Context, customID string) (*EnrollmentSummary, error) {
	var planName, planCategory, email sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT plan_name, plan_category, student_email
		FROM payments
		WHERE custom_id = $1
	`, customID).Scan(&planName, &planCategory, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	name := planName.String
	if name == "" {
		name = "Premium Plan"
	}

	summary := &EnrollmentSummary{
		OrderID:  customID,
		PlanName: name,
	}

	category := strings.ToLower(planCategory.String)
	if category == "" {
		category = "april"
	}
	if link, ok := s.catalog.CommunityLink(category, PlanTypeOf(planName.String)); ok {
		summary.CommunityLink = link
	}

	var count int
	if email.String != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM payments WHERE student_email = $1 AND status IN ($2, $3)`,
			email.String, model.StatusPaid, model.StatusMockPaid,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("count enrollments: %w", err)
		}
	}

	if count > 1 {
		summary.Upgrade = true
		summary.Title = "Upgrade Successful!"
		summary.Message = fmt.Sprintf("You have successfully upgraded your account to %s.", name)
	} else {
		summary.Title = "Welcome Aboard!"
		summary.Message = fmt.Sprintf("You have successfully subscribed to %s.", name)
		if summary.CommunityLink != "" {
			summary.Message += " Please join the community below to get started."
		}
	}

	return summary, nil
}
