package router

import (
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
)

func middlewareAuthorization(enforcer *casbin.Enforcer, publicEndpoints map[string]map[string]struct{}) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if enforcer == nil {
				next.ServeHTTP(w, r)
				return
			}

			path := matchedRoutePath(r)

			if s, ok := publicEndpoints[r.Method]; ok {
				if _, skip := s[path]; skip {
					next.ServeHTTP(w, r)
					return
				}
			}

			claims := jwt.GetAuth(r.Context())
			if claims == nil {
				writeJSON(w, map[string]string{"message": "Authentication required"}, http.StatusUnauthorized)
				return
			}

			allowed, err := enforcer.Enforce(claims.UserRole, path, r.Method)
			if err != nil || !allowed {
				writeJSON(w, map[string]string{"message": "You do not have access to this resource"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
