package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/user"
	"accelerator/internal/http/middleware"
)

const dateLayout = time.DateOnly

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return common.NewValidationError("request body too large", nil)
		case errors.Is(err, io.EOF):
			return common.NewValidationError("request body is required", nil)
		default:
			return common.NewValidationError("invalid json body", map[string]string{"body": err.Error()})
		}
	}
	return nil
}

// idFromPath returns the UUID at segment idx of the path, counting the empty
// segment before the leading slash as 0.
func idFromPath(r *http.Request, idx int) (common.UUID, error) {
	parts := strings.Split(r.URL.Path, "/")
	if idx >= len(parts) {
		return "", common.NewError(common.CodeNotFound, "resource not found", nil)
	}
	id, err := common.ParseUUID(parts[idx])
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{"id": "invalid uuid"})
	}
	return id, nil
}

func parseUUIDField(field, value string) (common.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return "", common.NewValidationError("invalid request", map[string]string{field: field + " is required"})
	}
	id, err := common.ParseUUID(value)
	if err != nil {
		return "", common.NewValidationError("invalid request", map[string]string{field: "invalid uuid"})
	}
	return id, nil
}

// queryUUID returns the zero UUID when the parameter is absent.
func queryUUID(r *http.Request, name string) (common.UUID, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return "", nil
	}
	return parseUUIDField(name, value)
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and keeps only the calendar date.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, common.NewValidationError("invalid request", map[string]string{field: "date must be YYYY-MM-DD"})
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

func parseUUIDList(field string, values []string) ([]common.UUID, error) {
	ids := make([]common.UUID, 0, len(values))
	for _, value := range values {
		id, err := parseUUIDField(field, value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type identity struct {
	UserID common.UUID
	Role   user.Role
}

func identityFromRequest(r *http.Request) (identity, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return identity{}, errUnauthorized()
	}
	role, _ := middleware.RoleFromContext(r.Context())
	return identity{UserID: userID, Role: role}, nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "unauthorized", nil)
}

func errForbidden(message string) error {
	return common.NewError(common.CodeForbidden, message, nil)
}
