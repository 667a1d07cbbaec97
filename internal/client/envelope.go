package client

import (
	"bytes"
	"encoding/json"
)

// unwrapObject returns the entity inside {"<key>": {...}} for the first key
// present, or the body itself when it is not wrapped.
func unwrapObject(body []byte, keys ...string) json.RawMessage {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}

	for _, key := range keys {
		if inner, ok := envelope[key]; ok && isJSONObject(inner) {
			return inner
		}
	}
	return body
}

// unwrapList accepts a bare array, {"<key>": [...]} or {"<key>": {...}} (one
// element) and always returns an array.
func unwrapList(body []byte, keys ...string) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		return body
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return json.RawMessage("[]")
	}

	for _, key := range keys {
		inner, ok := envelope[key]
		if !ok {
			continue
		}
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '[' {
			return inner
		}
		if isJSONObject(inner) {
			return append(append(json.RawMessage("["), inner...), ']')
		}
	}
	return json.RawMessage("[]")
}

func isJSONObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
