package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"enrollhub/internal/mw"
	"enrollhub/internal/service"
)

type adminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginHandler exchanges the configured admin password for a
// short-lived token carrying the admin role.
func AdminLoginHandler(adminPassword, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if adminPassword == "" {
			http.Error(w, "admin access not configured", http.StatusServiceUnavailable)
			return
		}

		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(adminPassword)) != 1 {
			http.Error(w, "invalid password", http.StatusUnauthorized)
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"role": mw.AdminRole,
			"exp":  jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		})
		tokenString, err := token.SignedString([]byte(secret))
		if err != nil {
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": tokenString})
	}
}

func AdminListUsersHandler(adminSvc *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, latestOrders, err := adminSvc.ListUsers(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"users":       users,
			"user_orders": latestOrders,
		})
	}
}

func AdminListOrdersHandler(adminSvc *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := adminSvc.ListOrders(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"orders": orders})
	}
}

func AdminDeleteUserHandler(adminSvc *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleteOne(w, r, adminSvc.DeleteUser)
	}
}

func AdminDeleteOrderHandler(adminSvc *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleteOne(w, r, adminSvc.DeleteOrder)
	}
}

func deleteOne(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, id string) error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := del(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// AdminDeleteAllHandler wipes a whole table; the item type comes from the
// URL ("user" or "order").
func AdminDeleteAllHandler(adminSvc *service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			count int64
			err   error
		)
		switch chi.URLParam(r, "itemType") {
		case "user":
			count, err = adminSvc.DeleteAllUsers(r.Context())
		case "order":
			count, err = adminSvc.DeleteAllOrders(r.Context())
		default:
			http.Error(w, "invalid item type", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"count":   count,
		})
	}
}
