package model

import "time"

// Payment statuses. A record only ever moves to a higher rank;
// PAID and MOCK_PAID are terminal.
const (
	StatusInit      = "INIT"
	StatusCreated   = "CREATED"
	StatusAttempted = "ATTEMPTED"
	StatusPaid      = "PAID"
	StatusMockPaid  = "MOCK_PAID"
)

var statusRank = map[string]int{
	StatusInit:      0,
	StatusCreated:   1,
	StatusAttempted: 2,
	StatusPaid:      3,
	StatusMockPaid:  3,
}

// StatusAdvances reports whether moving from to next is a forward
// transition. Unknown statuses never advance.
func StatusAdvances(from, to string) bool {
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

type Payment struct {
	ID           string  `json:"id"`
	CustomID     string  `json:"custom_id"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	StudentName  string  `json:"student_name,omitempty"`
	StudentEmail string  `json:"student_email,omitempty"`
	StudentPhone string  `json:"student_phone,omitempty"`
	PlanName     string  `json:"plan_name,omitempty"`
	PlanCategory string  `json:"plan_category,omitempty"`

	RazorpayOrderID   string `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
