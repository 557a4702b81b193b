package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"enrollhub/internal/service"
)

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Key      string `json:"key"`
}

func CreateOrderHandler(paymentSvc *service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req service.CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		result, err := paymentSvc.CreateOrder(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrGatewayNotConfigured):
				http.Error(w, "payment gateway not configured", http.StatusServiceUnavailable)
			default:
				slog.Error("order creation failed", "custom_id", req.CustomID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(createOrderResponse{
			ID:       result.Order.ID,
			Amount:   result.Order.Amount,
			Currency: result.Order.Currency,
			Status:   result.Order.Status,
			Key:      result.Key,
		})
	}
}

func VerifyPaymentHandler(paymentSvc *service.PaymentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req service.VerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		customID, err := paymentSvc.Reconcile(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSignatureVerification):
				http.Error(w, "payment verification failed", http.StatusBadRequest)
			case errors.Is(err, service.ErrGatewayNotConfigured):
				http.Error(w, "payment gateway not configured", http.StatusServiceUnavailable)
			default:
				slog.Error("payment reconciliation failed", "payment_id", req.RazorpayPaymentID, "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "success",
			"custom_id": customID,
		})
	}
}
