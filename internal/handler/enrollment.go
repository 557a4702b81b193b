package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"enrollhub/internal/mw"
	"enrollhub/internal/service"
)

func MyPlanHandler(authSvc *service.AuthService, enrollSvc *service.EnrollmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := r.Context().Value(mw.UserCtxKey).(string)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := authSvc.Get(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		plan, err := enrollSvc.ActivePlan(r.Context(), user.Phone)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user":        user,
			"active_plan": plan,
		})
	}
}

// EnrollmentSummaryHandler serves the post-payment confirmation page data.
func EnrollmentSummaryHandler(enrollSvc *service.EnrollmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		orderID := r.URL.Query().Get("order_id")
		if orderID == "" {
			http.Error(w, "order_id is required", http.StatusBadRequest)
			return
		}

		summary, err := enrollSvc.Summary(r.Context(), orderID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEnrollmentNotFound):
				http.Error(w, "enrollment not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}
