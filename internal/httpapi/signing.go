package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	gwerrors "payment-gateway/internal/errors"
)

// decodeSigned reads the request body into a flat map, pulls "token" out of
// it, and returns the remaining root-level scalars as the Signer's params
// input per §4.1's canonicalization rule: only scalars, nested objects/
// arrays/null are excluded, booleans render as "true"/"false".
func decodeSigned(r *http.Request) (raw map[string]interface{}, params map[string]string, token string, err error) {
	if decErr := json.NewDecoder(r.Body).Decode(&raw); decErr != nil {
		return nil, nil, "", gwerrors.Validation("body", "invalid JSON").WithDetail("cause", decErr.Error())
	}
	if t, ok := raw["token"].(string); ok {
		token = t
	}
	delete(raw, "token")
	params = scalarParams(raw)
	return raw, params, token, nil
}

// scalarParams filters a decoded JSON object down to its root-level scalar
// entries, rendered as strings, per §4.1 rule 1.
func scalarParams(raw map[string]interface{}) map[string]string {
	params := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			params[k] = val
		case bool:
			if val {
				params[k] = "true"
			} else {
				params[k] = "false"
			}
		case float64:
			params[k] = formatNumber(val)
		case nil, map[string]interface{}, []interface{}:
			// excluded: nested object, array, or null
		}
	}
	return params
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", f)
}

func queryParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if k == "token" || len(v) == 0 {
			continue
		}
		params[k] = v[0]
	}
	return params
}
