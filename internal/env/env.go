// Package env resolves xorsift environment variables. Every setting lives
// under the XORSIFT_ prefix.
package env

import (
	"os"
	"strings"
)

// Prefix is prepended to every setting name.
const Prefix = "XORSIFT_"

// Get looks up a setting by its bare name, e.g. "SEARCH_WORKERS" resolves
// XORSIFT_SEARCH_WORKERS. Surrounding whitespace is trimmed and an empty
// value counts as unset.
func Get(name string) (string, bool) {
	key := Prefix + strings.ToUpper(strings.TrimSpace(name))
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
