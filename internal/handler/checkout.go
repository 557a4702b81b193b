package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"enrollhub/internal/mw"
	"enrollhub/internal/service"
)

// CheckoutHandler allocates an order identifier for the selected plan and
// returns upgrade pricing for logged-in users. Sits behind the optional
// auth middleware: anonymous checkouts get an id with no pricing info.
func CheckoutHandler(checkoutSvc *service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		planType := r.URL.Query().Get("plan")
		if planType == "" {
			planType = service.PlanStandard
		}
		category := r.URL.Query().Get("category")
		if category == "" {
			category = "april"
		}

		userID, _ := r.Context().Value(mw.UserCtxKey).(string)

		result, err := checkoutSvc.Begin(r.Context(), userID, planType, category)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAllocationRace):
				http.Error(w, "could not allocate an order id, please retry checkout", http.StatusConflict)
			default:
				slog.Error("checkout failed", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, "encode error", http.StatusInternalServerError)
		}
	}
}
