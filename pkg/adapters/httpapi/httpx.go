package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

const maxBodyBytes = 1 << 20

func newRequestID() string { return "req_" + uuid.NewString() }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"request_id": newRequestID(),
		"error": map[string]any{
			"code": code, "message": message,
		},
	})
}

func writeBadBody(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "payload exceeds 1MB limit")
		return
	}
	writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
}

// writeServiceError traduce el tipo del error del motor a estado HTTP y código estable.
func writeServiceError(w http.ResponseWriter, err error) {
	kind := workflow.KindOf(err)
	status := statusForKind(kind)
	code := "INTERNAL"
	message := "internal error"
	if kind != "" {
		code = strings.ToUpper(string(kind))
		message = err.Error()
	}
	writeError(w, status, code, message)
}

func statusForKind(kind workflow.Kind) int {
	switch kind {
	case workflow.KindNotFound:
		return http.StatusNotFound
	case workflow.KindNotAuthorized:
		return http.StatusForbidden
	case workflow.KindIdentityMismatch:
		return http.StatusUnauthorized
	case workflow.KindTooManyAttempts:
		return http.StatusTooManyRequests
	case workflow.KindNotActionable,
		workflow.KindAlreadyResolved,
		workflow.KindDocumentClosed,
		workflow.KindConflict:
		return http.StatusConflict
	case workflow.KindInvalidReason,
		workflow.KindInvalidPosition,
		workflow.KindInvalidPercentage,
		workflow.KindInvalidRetentionReason,
		workflow.KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
