package middleware

import (
	"net/http"
	"slices"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// RequireRole admits authenticated callers whose token role is one of roles.
// It must run after Auth.
func RequireRole(logg *logger.Logger, roles ...enums.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var err error
			switch {
			case UserIDFromContext(ctx) == "":
				err = pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
			case !slices.Contains(roles, enums.UserRole(RoleFromContext(ctx))):
				err = pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role")
			default:
				next.ServeHTTP(w, r)
				return
			}
			responses.WriteError(ctx, logg, w, err)
		})
	}
}
