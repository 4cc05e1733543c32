package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError carries an upstream rejection. Detail is the best-available
// human-readable message extracted from the response body.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Detail)
}

func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// errorDetail normalizes an upstream error body into a plain message.
// Bodies are JSON with a "detail" field (a string, a list of {msg}
// objects, or an arbitrary object) or plain text.
func errorDetail(status int, contentType string, body []byte) string {
	if strings.Contains(contentType, "application/json") {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err == nil {
			raw, ok := payload["detail"]
			if !ok {
				raw, ok = payload["message"]
			}
			if ok {
				if detail := flattenDetail(raw); detail != "" {
					return detail
				}
			} else if len(payload) > 0 {
				return string(body)
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("Request failed (%d)", status)
}

func flattenDetail(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		messages := make([]string, 0, len(items))
		for _, item := range items {
			msg, ok := item["msg"]
			if !ok {
				msg, ok = item["message"]
			}
			if ok {
				var text string
				if err := json.Unmarshal(msg, &text); err == nil {
					messages = append(messages, text)
					continue
				}
			}
			encoded, err := json.Marshal(item)
			if err != nil {
				continue
			}
			messages = append(messages, string(encoded))
		}
		return strings.Join(messages, "\n")
	}

	return strings.TrimSpace(string(raw))
}
