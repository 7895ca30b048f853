package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	billingapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/application"
	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	projectionapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/application"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fueling.ErrInvalidOperationData),
		errors.Is(err, fueling.ErrInvalidCurrency),
		errors.Is(err, fueling.ErrIncompleteInputRow),
		errors.Is(err, billingapp.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, fueling.ErrOperationNotFound):
		return http.StatusNotFound
	case errors.Is(err, projectionapp.ErrPresetSyncNotStarted),
		errors.Is(err, projectionapp.ErrPresetSyncNotReady):
		return http.StatusConflict
	case errors.Is(err, fueling.ErrHistoryUnavailable),
		errors.Is(err, projectionapp.ErrPresetSyncClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, fueling.ErrPersistenceFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
