package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// Decode turns a provider body into a flat map according to its content
// type. XML is recognized but not decoded. Without a usable content type
// the body is sniffed: a leading '{' means JSON, anything else is form.
func Decode(contentType string, body []byte) (map[string]any, error) {
	data := map[string]any{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return data, nil
	}

	mt := ""
	if contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
			mt = parsed
		} else {
			mt = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
		}
	}

	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return decodeJSON(trimmed)
	case mt == "application/x-www-form-urlencoded":
		return decodeForm(trimmed)
	case mt == "application/xml" || mt == "text/xml" || strings.HasSuffix(mt, "+xml"):
		return data, nil
	case trimmed[0] == '{':
		return decodeJSON(trimmed)
	default:
		return decodeForm(trimmed)
	}
}

func decodeJSON(b []byte) (map[string]any, error) {
	data := map[string]any{}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return data, nil
}

func decodeForm(b []byte) (map[string]any, error) {
	vals, err := url.ParseQuery(string(b))
	if err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	data := make(map[string]any, len(vals))
	for k, v := range vals {
		if len(v) == 1 {
			data[k] = v[0]
		} else {
			data[k] = v
		}
	}
	return data, nil
}

// BuildResponse applies the status policy: 200 yields data (a body that
// cannot be decoded is ErrProtocol), anything else is a passthrough.
func BuildResponse(status int, contentType string, body []byte) (*Response, error) {
	data, err := Decode(contentType, body)
	if status == 200 {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return &Response{Data: data}, nil
	}
	if err != nil {
		data = map[string]any{}
	}
	return &Response{Passthrough: &Passthrough{
		StatusCode:  status,
		ContentType: contentType,
		Body:        body,
		Data:        data,
	}}, nil
}
