package protocol

// Response is what a provider call yields. Exactly one of Data or
// Passthrough is meaningful: check IsPassthrough before reading Data.
type Response struct {
	Data        map[string]any
	Passthrough *Passthrough
}

// IsPassthrough reports a non-200 provider response that must be
// forwarded to the browser unchanged.
func (r *Response) IsPassthrough() bool {
	return r != nil && r.Passthrough != nil
}

// String returns Data[key] as a string when it is one, "" otherwise.
func (r *Response) String(key string) string {
	if r == nil || r.Data == nil {
		return ""
	}
	switch v := r.Data[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// Passthrough is a non-200 provider response kept verbatim.
type Passthrough struct {
	StatusCode  int
	ContentType string
	Body        []byte
	// Data is the best-effort decoded body, possibly empty.
	Data map[string]any
}
