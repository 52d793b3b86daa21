package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"accelerator/internal/common"
)

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    common.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("write response failed", "err", err)
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes err as the JSON error envelope. Internal causes are logged and
// never echoed to the client.
func Error(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	status := StatusFor(appErr.Code)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
	}
	JSON(w, status, errorBody{Error: errorPayload{Code: appErr.Code, Message: appErr.Message, Fields: appErr.Fields}})
}

func StatusFor(code common.Code) int {
	switch code {
	case common.CodeValidation, common.CodeDuplicate:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func toAppError(err error) *common.Error {
	var appErr *common.Error
	if errors.As(err, &appErr) && appErr.Code != common.CodeInternal {
		return appErr
	}
	return &common.Error{Code: common.CodeInternal, Message: "internal error"}
}
