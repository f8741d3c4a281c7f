package handler

import (
	"encoding/json"
	"net/http"

	"github.com/podclip/backend/internal/contextkeys"
	"github.com/podclip/backend/internal/domain"
	log "github.com/sirupsen/logrus"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.WithError(err).Error("failed to encode JSON response")
		}
	}
}

// Error writes an error JSON response, using AppError status codes when
// available. Quota exhaustion gets a structured body so the UI can render
// the upgrade prompt with used/limit/plan.
func Error(w http.ResponseWriter, err error) {
	if qe, ok := domain.AsQuotaExceeded(err); ok {
		JSON(w, http.StatusPaymentRequired, map[string]interface{}{
			"error":   "quota exceeded",
			"feature": qe.Feature,
			"used":    qe.Used,
			"limit":   qe.Limit,
			"plan":    qe.Plan,
		})
		return
	}
	if appErr, ok := domain.AsAppError(err); ok {
		if appErr.Err != nil {
			log.WithError(appErr.Err).Warn(appErr.Message)
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.Message})
		return
	}
	log.WithError(err).Error("unhandled error")
	JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// DecodeJSON decodes a JSON request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrBadRequest("invalid JSON body")
	}
	return nil
}

// UserID extracts the authenticated user ID stored by the auth middleware.
func UserID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(contextkeys.UserID).(string)
	return id, ok && id != ""
}
