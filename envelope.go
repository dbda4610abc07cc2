package ramik

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the backend's success wrapper: {status, data}.
type envelope struct {
	Status  string          `json:"status"`
	Results int             `json:"results,omitempty"`
	Token   string          `json:"token,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// decodeData extracts the payload of an envelope into T.
// When data is an object holding the key name, the value under that key is
// the payload; otherwise data itself is. A missing or null payload yields the
// zero value of T.
func decodeData[T any](raw json.RawMessage, name string) (T, error) {
	var out T
	if len(raw) == 0 {
		return out, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	payload := unwrap(env.Data, name)
	if isNull(payload) {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("%w: decode %s: %v", ErrMalformedResponse, nameOr(name, "data"), err)
	}
	return out, nil
}

func unwrap(data json.RawMessage, name string) json.RawMessage {
	if name == "" {
		return data
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return data
	}
	if inner, ok := fields[name]; ok {
		return inner
	}
	return data
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
