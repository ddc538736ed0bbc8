package web

// errors.go turns handler errors into JSON responses.
//
// The technical error is logged with the request ID; the client receives the
// mapped UserMessage so internal details such as temp paths never leak.

import (
	"net/http"

	"github.com/JonMunkholm/csvprobe/internal/core"
	"github.com/JonMunkholm/csvprobe/internal/logging"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx API response. Error is the HTTP
// status text; Message and Action come from the mapped UserMessage.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	ue := core.NewUserError(err)
	msg := ue.User

	logger := core.LoggerFromContext(r.Context(), logging.FromContext(r.Context()))
	level := zap.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zap.ErrorLevel
	}
	logger.Log(level, "request error",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Int("status", status),
		zap.String("code", msg.Code),
		zap.Error(ue.Technical),
	)

	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as the response body. Encoding failures are logged
// since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("json encode error", zap.Error(err))
	}
}
