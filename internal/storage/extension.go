package storage

import (
	"encoding/json"
	"fmt"
)

// ExtensionState carries optional, consumer specific settings on an asset.
// Each key is decoded lazily by whoever understands it.
type ExtensionState map[string]json.RawMessage

// Set stores v under key after marshalling it to JSON.
func (e *ExtensionState) Set(k string, v any) error {
	if *e == nil {
		*e = ExtensionState{}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal extension %q: %w", k, err)
	}

	(*e)[k] = json.RawMessage(b)
	return nil
}

// Get unmarshals the extension value at key into out.
// Returns (found=false, nil) if not present.
func (e ExtensionState) Get(key string, out any) (bool, error) {
	raw, ok := e[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal extension %q: %w", key, err)
	}
	return true, nil
}

// Extension decodes the value at key as a T. The zero T is returned when the
// key is absent.
func Extension[T any](e ExtensionState, key string) (T, bool, error) {
	var out T
	found, err := e.Get(key, &out)
	if err != nil {
		var zero T
		return zero, found, err
	}
	return out, found, nil
}
