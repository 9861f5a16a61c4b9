package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// Candidate is an unvalidated record returned by an extraction capability.
// Every field may be absent; the normalizer decides how to treat each gap.
type Candidate struct {
	Date        *string  `json:"date,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Type        *string  `json:"type,omitempty"`
}

// DecodeCandidate reads a loosely-typed model object. Fields with the wrong
// type are treated as absent rather than failing the record.
func DecodeCandidate(obj map[string]interface{}) Candidate {
	return Candidate{
		Date:        getOptionalStringField(obj, "date"),
		Amount:      getOptionalAmountField(obj, "amount"),
		Description: getOptionalStringField(obj, "description"),
		Category:    getOptionalStringField(obj, "category"),
		Type:        getOptionalStringField(obj, "type"),
	}
}

// DecodeCandidates reads the model's top-level array. Elements that are not
// objects become empty candidates so the normalizer can drop them.
func DecodeCandidates(raw interface{}) ([]Candidate, error) {
	items, ok := raw.([]interface{})
	if !ok {
		// Some models wrap the array in an object.
		if obj, isObj := raw.(map[string]interface{}); isObj {
			if inner, found := obj["transactions"].([]interface{}); found {
				items, ok = inner, true
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("DecodeCandidates: model output is %T, want array", raw)
	}

	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]interface{})
		out = append(out, DecodeCandidate(obj))
	}
	return out, nil
}

func getOptionalStringField(m map[string]interface{}, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// getOptionalAmountField accepts a JSON number or a numeric string such as
// "$1,204.50".
func getOptionalAmountField(m map[string]interface{}, key string) *float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	switch val := v.(type) {
	case float64:
		f := val
		return &f
	case int:
		f := float64(val)
		return &f
	case string:
		f, err := parseAmount(val)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func parseAmount(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			return r
		default:
			return -1
		}
	}, strings.TrimSpace(s))
	if cleaned == "" {
		return 0, fmt.Errorf("parseAmount: no digits in %q", s)
	}
	return strconv.ParseFloat(cleaned, 64)
}
