package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"hotel-ops-go/internal/config"
	"hotel-ops-go/pkg/logger"
)

// IdentityAuth verifies bearer tokens against the identity service that owns
// hotel accounts. The verified principal carries the role and hotel scope
// every downstream check relies on.
type IdentityAuth struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	log      logger.Logger
	skipAuth bool
	mockUser User
}

type contextKey int

const userKey contextKey = iota

type User struct {
	ID      string
	Email   string
	Name    string
	Role    string
	HotelID string
}

type identityResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	HotelID string `json:"hotel_id"`
}

func NewIdentityAuth(cfg config.AuthConfig, log logger.Logger) *IdentityAuth {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &IdentityAuth{
		baseURL: strings.TrimRight(cfg.IdentityURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log:      log,
		skipAuth: cfg.SkipAuth,
		mockUser: User{
			ID:      strings.TrimSpace(cfg.MockUserID),
			Email:   strings.TrimSpace(cfg.MockUserEmail),
			Name:    strings.TrimSpace(cfg.MockUserName),
			Role:    strings.TrimSpace(cfg.MockUserRole),
			HotelID: strings.TrimSpace(cfg.MockHotelID),
		},
	}
}

func (a *IdentityAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			user := a.mockUser
			if user.ID == "" || user.HotelID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user not configured")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			return
		}

		if a.baseURL == "" || a.apiKey == "" {
			writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, a.baseURL+"/v1/me", nil)
		if err != nil {
			unauthorized(w)
			return
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("X-Api-Key", a.apiKey)

		resp, err := a.client.Do(req)
		if err != nil {
			a.log.BusinessError("auth: identity request failed", err)
			unauthorized(w)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			unauthorized(w)
			return
		}

		var payload identityResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			unauthorized(w)
			return
		}
		if payload.ID == "" || payload.HotelID == "" {
			unauthorized(w)
			return
		}

		user := User{
			ID:      payload.ID,
			Email:   payload.Email,
			Name:    payload.Name,
			Role:    payload.Role,
			HotelID: payload.HotelID,
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userKey).(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
