package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	customError "github.com/segyhp/loan-ledger/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error"`
	Message   string      `json:"message,omitempty"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	writeJSON(w, statusCode, response)
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends an error JSON response. code is a stable machine-readable
// identifier, message is safe to show to the caller.
func Error(w http.ResponseWriter, statusCode int, code, message string) {
	ErrorWithDetails(w, statusCode, code, message, nil)
}

// ErrorWithDetails is Error with an extra payload, e.g. per-field validation messages.
func ErrorWithDetails(w http.ResponseWriter, statusCode int, code, message string, details interface{}) {
	response := ErrorResponse{
		Success:   false,
		Error:     code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}

	writeJSON(w, statusCode, response)
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, code, message string) {
	Error(w, http.StatusBadRequest, code, message)
}

// NotFound sends a 404 not found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, string(customError.KindNotFound), message)
}

// InternalServerError sends a 500 without leaking the cause.
func InternalServerError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, string(customError.KindInternal), "internal server error")
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// StatusForKind maps an error kind onto an HTTP status.
func StatusForKind(kind customError.Kind) int {
	switch kind {
	case customError.KindNotFound:
		return http.StatusNotFound
	case customError.KindForbidden:
		return http.StatusForbidden
	case customError.KindInvalidState:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromError renders err according to its kind. Internal failures get a
// generic body; the caller is expected to have logged them.
func FromError(w http.ResponseWriter, err error) {
	be, ok := customError.AsBusinessError(err)
	if !ok || be.Kind == customError.KindInternal {
		InternalServerError(w)
		return
	}
	Error(w, StatusForKind(be.Kind), be.Code, be.Message)
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response recorder to capture the status code
			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.statusCode,
				"duration", time.Since(start),
			)
		})
	}
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *responseRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
