// Package httputil holds the JSON encode/decode helpers shared by handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "clearance/pkg/domain-errors"
)

// maxBodyBytes bounds request bodies accepted by DecodeAndPrepare.
const maxBodyBytes = 1 << 20

// Validatable requests normalize and validate themselves after decoding.
type Validatable interface {
	Validate() error
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into a status code and an
// {"error", "error_description"} body. Internal errors never leak details.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	message := ""
	if de, ok := dErrors.As(err); ok {
		code = de.Code
		message = de.Message
	}

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal && message != "" {
		body["error_description"] = message
	}
	WriteJSON(w, StatusFor(code), body)
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeAndPrepare decodes a JSON body into T and runs its validation. On
// failure it writes the error response and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (PT, bool) {
	req := PT(new(T))
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		if logger != nil {
			logger.WarnContext(ctx, "failed to decode request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return nil, false
	}
	if err := req.Validate(); err != nil {
		if !dErrors.Is(err) {
			err = dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
		}
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
