// Package http provides error-returning handlers and the server lifecycle
// used by the API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/propellerswap/propeller/pkg/app/errors"
)

// HandlerFunc is an http handler that returns its failure
type HandlerFunc func(http.ResponseWriter, *http.Request) error

type errorResponse struct {
	ErrMsg     string `json:"error"`
	ErrMsgCode int    `json:"code"`
}

// HandleError adapts h to http.HandlerFunc, rendering returned errors as JSON.
//
//	r.Post("/swaps", apphttp.HandleError(logger, h.submit))
func HandleError(logger *zap.Logger, h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(logger, w, r, err)
		}
	}
}

// WriteError renders err. Causes of server-side failures are logged, never
// returned to the client.
func WriteError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "Unexpected Service Error"

	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		status = svcErr.StatusCode()
		msg = svcErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}

	WriteJSON(w, status, &errorResponse{ErrMsg: msg, ErrMsgCode: status})
}

// WriteJSON writes v with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
