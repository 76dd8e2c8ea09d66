package middleware

import (
	"net/http"
	"strings"
	"time"

	"homeboard/internal/auth"
	"homeboard/internal/store"
)

// RequireAuth validates the Authorization bearer token and populates
// AuthContext. A missing or invalid credential yields 401; handlers behind
// this middleware may additionally require entitlement (403).
func RequireAuth(secret []byte, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userID, err := auth.VerifyToken(secret, tokenStr)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := userStore.GetByID(userID)
			if err != nil || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ac := auth.AuthContext{
				UserID:   user.ID,
				Plan:     string(user.SubscriptionPlan),
				Entitled: user.Entitled(time.Now()),
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireEntitlement gates plan-restricted features. A valid session whose
// subscription has lapsed gets 403, never 401, so clients can distinguish
// re-authentication from billing.
func RequireEntitlement(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.Entitled(r.Context()) {
			http.Error(w, "Subscription required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
