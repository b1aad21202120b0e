package access

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload is returned when scanned data cannot be reduced to a code
var ErrMalformedPayload = errors.New("malformed QR payload")

// ScanRequest is the body a checkpoint scanner posts. Either field may carry a
// raw token, a JSON-encoded object or an object.
type ScanRequest struct {
	QRCode json.RawMessage `json:"qrCode,omitempty"`
	QRData json.RawMessage `json:"qrData,omitempty"`
}

// codeKeys are the object fields a code may be stored under, in lookup order
var codeKeys = []string{"qrCode", "code", "qr_code"}

type payloadKind int

const (
	payloadAbsent payloadKind = iota
	payloadText
	payloadObject
)

type payload struct {
	kind   payloadKind
	text   string
	object map[string]json.RawMessage
}

// Normalize reduces a scan request to a single code. qrData wins over qrCode;
// qrCode is only consulted when qrData yields nothing.
func Normalize(req ScanRequest) (string, error) {
	fields := []struct {
		name string
		raw  json.RawMessage
	}{
		{"qrData", req.QRData},
		{"qrCode", req.QRCode},
	}

	for _, f := range fields {
		p, err := classify(f.raw)
		if err != nil {
			return "", fmt.Errorf("%w: %s %v", ErrMalformedPayload, f.name, err)
		}
		if code := p.code(); code != "" {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: no code in qrData or qrCode", ErrMalformedPayload)
}

func classify(raw json.RawMessage) (payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return payload{kind: payloadAbsent}, nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return payload{}, fmt.Errorf("is not a valid string: %w", err)
		}
		return classifyText(s)
	case '{':
		return decodeObject(raw)
	case '[', 't', 'f':
		return payload{}, errors.New("must be a string or an object")
	default:
		// Bare JSON numbers are accepted as codes
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return payload{}, fmt.Errorf("is not valid JSON: %w", err)
		}
		return payload{kind: payloadText, text: n.String()}, nil
	}
}

func classifyText(s string) (payload, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return payload{kind: payloadAbsent}, nil
	}
	if strings.HasPrefix(s, "{") {
		return decodeObject([]byte(s))
	}
	return payload{kind: payloadText, text: s}, nil
}

func decodeObject(raw []byte) (payload, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return payload{}, fmt.Errorf("is not a valid JSON object: %w", err)
	}
	return payload{kind: payloadObject, object: obj}, nil
}

func (p payload) code() string {
	switch p.kind {
	case payloadText:
		return p.text
	case payloadObject:
		for _, key := range codeKeys {
			raw, ok := p.object[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
