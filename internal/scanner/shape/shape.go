// Package shape holds helpers for inspecting and decoding untyped JSON
// documents (as produced by encoding/json into an `any`).
package shape

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Object returns raw as a JSON object.
func Object(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	return m, ok && m != nil
}

// Array returns m[key] when it is a JSON array.
func Array(m map[string]any, key string) ([]any, bool) {
	a, ok := m[key].([]any)
	return a, ok
}

// HasKeys reports whether every key is present in m, whatever its value.
func HasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// Decode maps an untyped document onto out, a pointer to a struct tagged
// with `json` tags. Unknown fields are ignored and scalar types are coerced
// (JSON numbers into ints, and so on). The input is never modified.
func Decode(raw any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode report: %w", err)
	}
	return nil
}
