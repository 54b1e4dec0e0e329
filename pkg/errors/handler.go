package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// retryAfterSeconds is sent with STORE_UNAVAILABLE responses
const retryAfterSeconds = "1"

// ErrorResponse is the JSON envelope of every failed request
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler renders errors as ErrorResponse envelopes. Errors that are not
// AppErrors are reported as INTERNAL without leaking their text unless debug
// is on.
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err. A nil error writes nothing.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	appErr := GetAppError(err)
	if appErr == nil {
		appErr = NewInternalError("An internal error occurred").WithCause(err)
	}

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	response := ErrorResponse{
		Error:     true,
		Type:      string(appErr.Type),
		Message:   appErr.Message,
		Code:      appErr.Code,
		Details:   appErr.Details,
		RequestID: r.Header.Get(requestIDHeader),
	}
	if h.debug {
		response.Details = h.debugDetails(appErr)
	}

	h.log(r, appErr, status)

	if appErr.Type == ErrorTypeStoreUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	h.sendJSON(w, status, response)
}

func (h *ErrorHandler) debugDetails(appErr *AppError) map[string]interface{} {
	details := make(map[string]interface{}, len(appErr.Details)+2)
	for k, v := range appErr.Details {
		details[k] = v
	}
	if appErr.Cause != nil {
		details["cause"] = appErr.Cause.Error()
	}
	if appErr.StackTrace != "" {
		details["stack_trace"] = appErr.StackTrace
	}
	return details
}

// log writes 5xx at error level and everything else at warn
func (h *ErrorHandler) log(r *http.Request, appErr *AppError, status int) {
	fields := []zap.Field{
		zap.String("errorType", string(appErr.Type)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("requestID", r.Header.Get(requestIDHeader)),
	}
	if appErr.Code != "" {
		fields = append(fields, zap.String("errorCode", appErr.Code))
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(appErr.Message, fields...)
		return
	}
	h.logger.Warn(appErr.Message, fields...)
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err), zap.String("type", data.Type))
	}
}

// Middleware turns panics into INTERNAL responses. http.ErrAbortHandler is
// re-raised so the server can abort the connection.
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
