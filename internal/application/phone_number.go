package application

import (
	"bytes"
	"encoding/json"
)

// PhoneNumber accepts a customer phone given either as a JSON number or as a
// string. The raw text is kept so the validator can report malformed input
// instead of the decoder rejecting the whole body.
type PhoneNumber string

// UnmarshalJSON implements json.Unmarshaler.
func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PhoneNumber(s)
		return nil
	default:
		*p = PhoneNumber(data)
		return nil
	}
}
