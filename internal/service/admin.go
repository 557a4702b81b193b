package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"enrollhub/internal/model"
)

var ErrNotFound = errors.New("record not found")

type AdminService struct {
	db *sql.DB
}

func NewAdminService(db *sql.DB) *AdminService {
	return &AdminService{db: db}
}

// ListUsers returns all registered users together with each user's latest
// completed order, linked by phone number.
func (s *AdminService) ListUsers(ctx context.Context) ([]model.User, map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, created_at FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt); err != nil {
			return nil, nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		return nil, nil, err
	}

	latestByPhone := make(map[string]string)
	for _, o := range orders {
		if o.StudentPhone != "" {
			if _, seen := latestByPhone[o.StudentPhone]; !seen {
				latestByPhone[o.StudentPhone] = o.CustomID
			}
		}
	}

	return users, latestByPhone, nil
}

// ListOrders returns completed payments (those carrying a gateway payment
// id), newest first.
func (s *AdminService) ListOrders(ctx context.Context) ([]model.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, custom_id, status, amount, currency,
		       COALESCE(student_name, ''), COALESCE(student_email, ''), COALESCE(student_phone, ''),
		       COALESCE(plan_name, ''), COALESCE(plan_category, ''),
		       COALESCE(razorpay_order_id, ''), COALESCE(razorpay_payment_id, ''), created_at
		FROM payments
		WHERE razorpay_payment_id IS NOT NULL AND razorpay_payment_id <> ''
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.CustomID, &p.Status, &p.Amount, &p.Currency,
			&p.StudentName, &p.StudentEmail, &p.StudentPhone,
			&p.PlanName, &p.PlanCategory,
			&p.RazorpayOrderID, &p.RazorpayPaymentID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return payments, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "users", id)
}

func (s *AdminService) DeleteOrder(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "payments", id)
}

func (s *AdminService) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AdminService) DeleteAllUsers(ctx context.Context) (int64, error) {
	return s.deleteAll(ctx, "users")
}

func (s *AdminService) DeleteAllOrders(ctx context.Context) (int64, error) {
	return s.deleteAll(ctx, "payments")
}

func (s *AdminService) deleteAll(ctx context.Context, table string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table)
	if err != nil {
		return 0, fmt.Errorf("delete all from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
