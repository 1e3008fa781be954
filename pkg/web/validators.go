package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseBool reads an optional boolean query parameter. A missing parameter yields fallback.
// Returns the value and a boolean indicating success; on failure a 400 has been written.
func ParseBool(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, fallback bool) (bool, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback, true
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s value: %s", key, value))
		return false, false
	}
	return parsed, true
}
