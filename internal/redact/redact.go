// Package redact keeps key material out of persisted run journals. Values
// stored under a sensitive metadata name are replaced by their length and a
// short SHA-256 fingerprint, which is enough to tell two runs apart without
// revealing the key.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const neverPersistKey = "never_persist"

// sensitiveNames are metadata names whose values are always fingerprinted.
var sensitiveNames = map[string]struct{}{
	"key":        {},
	"key_text":   {},
	"key_bytes":  {},
	"plaintext":  {},
	"candidate":  {},
	"xor_result": {},
}

// Fingerprint renders b as "len=N sha256=xxxxxxxx".
func Fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return fmt.Sprintf("len=%d sha256=%s", len(b), hex.EncodeToString(sum[:4]))
}

// Value fingerprints a sensitive value. Strings and byte slices are hashed by
// content; anything else is hashed by its %v rendering.
func Value(v any) string {
	switch tv := v.(type) {
	case []byte:
		return Fingerprint(tv)
	case string:
		return Fingerprint([]byte(tv))
	case fmt.Stringer:
		return Fingerprint([]byte(tv.String()))
	default:
		return Fingerprint([]byte(fmt.Sprint(tv)))
	}
}

// IsSensitive reports whether a metadata name carries key material.
func IsSensitive(name string) bool {
	_, ok := sensitiveNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Map returns a copy of in with sensitive values fingerprinted. Names listed
// under a "never_persist" entry (a comma separated string or a list) are
// fingerprinted too, and the never_persist entry itself is dropped. Nested
// maps are processed recursively.
func Map(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	extra := map[string]struct{}{}
	if raw, ok := lookupFold(in, neverPersistKey); ok {
		for _, name := range collectNames(raw) {
			extra[strings.ToLower(name)] = struct{}{}
		}
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			continue
		}
		_, listed := extra[strings.ToLower(k)]
		switch {
		case IsSensitive(k) || listed:
			out[k] = Value(v)
		default:
			if nested, ok := v.(map[string]any); ok {
				out[k] = Map(nested)
				continue
			}
			out[k] = v
		}
	}
	return out
}

func lookupFold(in map[string]any, name string) (any, bool) {
	for k, v := range in {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func collectNames(value any) []string {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, elem := range v {
			raw = append(raw, fmt.Sprint(elem))
		}
	}
	out := raw[:0:0]
	for _, name := range raw {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
