package responses

import (
	"context"
	"encoding/json"
	"net/http"

	zlog "github.com/rs/zerolog/log"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Data: data})
}

// WriteError renders err as the error envelope. Server-side failures are
// logged at error level with the full chain; client errors at warn.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	public := pkgerrors.PublicOf(err)

	if logg != nil && err != nil {
		fields := pkgerrors.Dump(err).LogFields()
		fields["http_status"] = public.Status
		ctx = logg.WithFields(ctx, fields)
		if public.Status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, public.Status, ErrorEnvelope{Error: APIError{
		Code:    string(public.Code),
		Message: public.Message,
		Details: public.Details,
	}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// headers are already sent; all that is left is to record it
		zlog.Error().Err(err).Int("status", status).Msg("response encode failed")
	}
}
