package langflow

import (
	"bytes"
	"encoding/json"
)

// ExtractOutput turns a flow response body into reply text.
//
// A JSON object with a string "output" field yields that string. Any other
// valid JSON yields the compacted payload itself. A body that is not JSON
// is returned unchanged.
func ExtractOutput(body []byte) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}

	if obj, ok := payload.(map[string]any); ok {
		if s, ok := obj["output"].(string); ok {
			return s
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(body)
	}
	return buf.String()
}
