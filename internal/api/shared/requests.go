package shared

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DecodeJSON decodes the request body into dst, rejecting unknown fields so
// client typos fail loudly instead of silently dropping settings.
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}
