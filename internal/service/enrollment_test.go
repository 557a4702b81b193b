package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newEnrollmentService(t *testing.T) (*EnrollmentService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	return NewEnrollmentService(db, DefaultCatalog()), mock, func() { db.Close() }
}

func TestActivePlanPrefersRealPayments(t *testing.T) {
	svc, mock, done := newEnrollmentService(t)
	defer done()

	mock.ExpectQuery(`SELECT plan_name, plan_category, custom_id`).
		WithArgs("9999999999", "PAID").
		WillReturnRows(sqlmock.NewRows([]string{"plan_name", "plan_category", "custom_id"}).
			AddRow("Elite Plan", "april", "#aEHea001"))

	plan, err := svc.ActivePlan(context.Background(), "9999999999")
	if err != nil {
		t.Fatalf("ActivePlan: %v", err)
	}
	if plan == nil || plan.CustomID != "#aEHea001" {
		t.Errorf("plan = %+v", plan)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestActivePlanFallsBackToMock(t *testing.T) {
	svc, mock, done := newEnrollmentService(t)
	defer done()

	mock.ExpectQuery(`SELECT plan_name, plan_category, custom_id`).
		WithArgs("9999999999", "PAID").
		WillReturnRows(sqlmock.NewRows([]string{"plan_name", "plan_category", "custom_id"}))
	mock.ExpectQuery(`SELECT plan_name, plan_category, custom_id`).
		WithArgs("9999999999", "MOCK_PAID").
		WillReturnRows(sqlmock.NewRows([]string{"plan_name", "plan_category", "custom_id"}).
			AddRow("Standard Plan", "april", "#aEHsa002"))

	plan, err := svc.ActivePlan(context.Background(), "9999999999")
	if err != nil {
		t.Fatalf("ActivePlan: %v", err)
	}
	if plan == nil || plan.CustomID != "#aEHsa002" {
		t.Errorf("plan = %+v", plan)
	}
}

func TestActivePlanNone(t *testing.T) {
	svc, mock, done := newEnrollmentService(t)
	defer done()

	for _, status := range []string{"PAID", "MOCK_PAID"} {
		mock.ExpectQuery(`SELECT plan_name, plan_category, custom_id`).
			WithArgs("0000000000", status).
			WillReturnRows(sqlmock.NewRows([]string{"plan_name", "plan_category", "custom_id"}))
	}

	plan, err := svc.ActivePlan(context.Background(), "0000000000")
	if err != nil {
		t.Fatalf("ActivePlan: %v", err)
	}
	if plan != nil {
		t.Errorf("plan = %+v, want nil", plan)
	}
}

func TestSummaryFirstPurchase(t *testing.T) {
	svc, mock, done := newEnrollmentService(t)
	defer done()

	mock.ExpectQuery(`SELECT plan_name, plan_category, student_email`).
		WithArgs("#aEHea001").
		WillReturnRows(sqlmock.NewRows([]string{"plan_name", "plan_category", "student_email"}).
			AddRow("Elite Plan", "april", "a@b.in"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments WHERE student_email`).
		WithArgs("a@b.in", "PAID", "MOCK_PAID").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	summary, err := svc.Summary(context.Background(), "#aEHea001")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.Upgrade {
		t.Error("first purchase must not be an upgrade")
	}
	if summary.CommunityLink == "" {
		t.Error("expected community link for april/elite")
	}
	if !strings.Contains(summary.Message, "subscribed") {
		t.Errorf("message = %q", summary.Message)
	}
}

func TestSummaryUpgrade(t *testing.T) {
	svc, mock, done := newEnrollmentService(t)
	defer done()

	mock.ExpectQuery(`SELECT plan_name, plan_category, student_email`).
		WithArgs("#aEHea002").
		WillReturnRows(sqlmock.NewRows([]string{"plan_name", "plan_category", "student_email"}).
			AddRow("Elite Plan", "april", "a@b.in"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments WHERE student_email`).
		WithArgs("a@b.in", "PAID", "MOCK_PAID").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	summary, err := svc.Summary(context.Background(), "#aEHea002")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !summary.Upgrade {
		t.Error("second purchase must read as an upgrade")
	}
	if !strings.Contains(summary.Message, "upgraded") {
		t.Errorf("message = %q", summary.Message)
	}
}

func TestSummaryNotFound(t *testing.T) {
	svc, mock, done := newEnrollmentService(t)
	defer done()

	mock.ExpectQuery(`SELECT plan_name, plan_category, student_email`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"plan_name", "plan_category", "student_email"}))

	_, err := svc.Summary(context.Background(), "ghost")
	if !errors.Is(err, ErrEnrollmentNotFound) {
		t.Fatalf("err = %v, want ErrEnrollmentNotFound", err)
	}
}
