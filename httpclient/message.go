package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	nethttp "net/http"
)

// ExtractMessage picks the user-facing message out of an error response
// body. Precedence: "error", "detail", "message", the first entry of
// "non_field_errors", then the first message of any other field in document
// order, then the HTTP status text.
func ExtractMessage(body []byte, status int) string {
	fields, order := decodeObject(body)

	for _, key := range []string{"error", "detail", "message"} {
		if msg := firstMessage(fields[key]); msg != "" {
			return msg
		}
	}
	if msg := firstMessage(fields["non_field_errors"]); msg != "" {
		return msg
	}
	for _, key := range order {
		if msg := firstMessage(fields[key]); msg != "" {
			return msg
		}
	}

	if text := nethttp.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// decodeObject decodes a JSON object keeping its key order. Anything that is
// not an object yields nothing.
func decodeObject(body []byte) (map[string]json.RawMessage, []string) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, nil
	}

	fields := make(map[string]json.RawMessage)
	var order []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		key, ok := tok.(string)
		if !ok {
			break
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			break
		}
		if _, seen := fields[key]; !seen {
			order = append(order, key)
		}
		fields[key] = raw
	}
	return fields, order
}

// firstMessage returns raw as a string, or the first string of an array.
func firstMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if err := json.Unmarshal(item, &s); err == nil && s != "" {
				return s
			}
		}
	}
	return ""
}
