package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ParsePage reads ?limit= and ?cursor= for keyset listings. An absent limit means
// pagination.DefaultLimit; a malformed cursor is rejected here rather than in the repository.
func ParsePage(r *http.Request) (pagination.Params, error) {
	query := r.URL.Query()
	params := pagination.Params{Limit: pagination.DefaultLimit}

	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit must be numeric").
				WithDetails(map[string]any{"field": "limit"})
		}
		if limit < 1 || limit > pagination.MaxLimit {
			return params, pkgerrors.New(pkgerrors.CodeValidation, "limit out of range").
				WithDetails(map[string]any{"field": "limit", "min": 1, "max": pagination.MaxLimit})
		}
		params.Limit = limit
	}

	if cursor := strings.TrimSpace(query.Get("cursor")); cursor != "" {
		if _, err := pagination.ParseCursor(cursor); err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor").
				WithDetails(map[string]any{"field": "cursor"})
		}
		params.Cursor = cursor
	}
	return params, nil
}
