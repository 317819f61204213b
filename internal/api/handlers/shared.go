package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// parseJSON decodes the request body into T.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	return v, nil
}
