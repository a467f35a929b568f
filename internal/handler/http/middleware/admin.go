package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/timekeeping-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/timekeeping-backend-go/internal/handler/http/response"
)

// AdminOnly rejects callers without the admin role.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Unauthorized")
			return
		}

		if !actor.IsAdmin() {
			response.HandleError(w, user.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
