package extract

import (
	"encoding/json"
	"fmt"
)

// Field is one extracted value from the service: a normalized data value
// plus the OCR-literal text it was read from. Either part may be empty.
type Field struct {
	Data json.RawMessage `json:"data,omitempty"`
	Text string          `json:"text,omitempty"`
}

// DataString renders the normalized data value as a flat string: quoted
// JSON strings are unquoted, everything else keeps its JSON form.
func (f *Field) DataString() string {
	if f == nil || len(f.Data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(f.Data, &s); err == nil {
		return s
	}
	return string(f.Data)
}

// TextString returns the OCR-literal text, empty when the field is absent.
func (f *Field) TextString() string {
	if f == nil {
		return ""
	}
	return f.Text
}

// Payload is the decoded extraction result for one document. Every field is
// optional; the service omits what it could not read.
type Payload struct {
	TotalAmount     *Field `json:"totalAmount,omitempty"`
	TaxAmount       *Field `json:"taxAmount,omitempty"`
	Date            *Field `json:"date,omitempty"`
	MerchantName    *Field `json:"merchantName,omitempty"`
	MerchantAddress *Field `json:"merchantAddress,omitempty"`
	Text            *Field `json:"text,omitempty"`
}

// DecodePayload parses raw payload JSON as stored in the cache or returned
// by the service.
func DecodePayload(raw []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode extraction payload: %w", err)
	}
	return &p, nil
}
