// Package legacy renders records in the key/value JSON shape older clients
// expect: one object whose keys are synthetic identifiers.
package legacy

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// Entry pairs a synthetic key with its record.
type Entry[T any] struct {
	Key   string
	Value T
}

// Envelope is an ordered sequence of entries. It marshals to a single JSON
// object with keys in insertion order.
type Envelope[T any] []Entry[T]

// MarshalJSON encodes the envelope as {"key": value, ...}.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Lookup returns the value stored under key.
func (e Envelope[T]) Lookup(key string) (T, bool) {
	for _, entry := range e {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	var zero T
	return zero, false
}

// Keys returns the entry keys in order.
func (e Envelope[T]) Keys() []string {
	keys := make([]string, len(e))
	for i, entry := range e {
		keys[i] = entry.Key
	}
	return keys
}

var keyReplacer = strings.NewReplacer(
	".", ",",
	"#", "_",
	"$", "_",
	"[", "_",
	"]", "_",
	"/", "_",
)

// SanitizeKey turns an email into a key safe for the legacy store:
// "a.b@x.com" becomes "a,b@x,com".
func SanitizeKey(email string) string {
	return keyReplacer.Replace(email)
}
