// Package sqlguard decides whether model-generated SQL may be executed.
//
// Extract reduces an untrusted model response to a single candidate statement
// and Validate applies a lexical read-only policy to it. Neither performs I/O.
package sqlguard

import (
	"errors"
	"strings"
)

// ErrEmptyGeneration is returned when the model produced no usable statement.
var ErrEmptyGeneration = errors.New("model returned no SQL statement")

// Extract returns the last non-empty ';'-separated segment of raw,
// trimmed and terminated by exactly one ';'. Earlier segments are discarded.
func Extract(raw string) (string, error) {
	var last string
	for _, seg := range strings.Split(raw, ";") {
		if seg = strings.TrimSpace(seg); seg != "" {
			last = seg
		}
	}
	if last == "" {
		return "", ErrEmptyGeneration
	}
	return last + ";", nil
}
