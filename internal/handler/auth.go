package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"enrollhub/internal/mw"
	"enrollhub/internal/service"
)

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func LoginHandler(authSvc *service.AuthService, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		user, err := authSvc.Authenticate(r.Context(), req.Identifier, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		tokenString, err := issueUserToken(user.ID, secret)
		if err != nil {
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Authorization", "Bearer "+tokenString)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Login successful",
			"token":   tokenString,
			"user":    user,
		})
	}
}

// LogoutHandler exists for frontend symmetry; bearer tokens are discarded
// client-side.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
	}
}

// CurrentUserHandler reports the session state; it sits behind the
// optional auth middleware so anonymous requests get a clean answer
// instead of a 401.
func CurrentUserHandler(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		userID, ok := r.Context().Value(mw.UserCtxKey).(string)
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"authenticated": false})
			return
		}

		user, err := authSvc.Get(r.Context(), userID)
		if err != nil {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"authenticated": false})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"authenticated": true,
			"user":          user,
		})
	}
}
