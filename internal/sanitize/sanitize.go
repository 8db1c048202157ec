// Package sanitize checks untrusted input arriving through the transports.
package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/asyncresource/pkg/domain"
)

var (
	// DefaultMaxInputSize is 64KB.
	DefaultMaxInputSize = 64 << 10

	// MaxSessionIDLength bounds session ids, which double as store keys and file names.
	MaxSessionIDLength = 128
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Input cleans free-form input by enforcing a size limit (DefaultMaxInputSize
// when limit <= 0), validating UTF-8 and stripping control characters other
// than newline, tab and carriage return.
func Input(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		// Rejected rather than truncated: a cut JSON document is never what the caller meant.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(input, isUnsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !isUnsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// SessionID accepts ids made of ASCII letters, digits, '-', '_' and '.', up to
// MaxSessionIDLength bytes, that are not "." or "..".
func SessionID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("%w: empty", domain.ErrInvalidSessionID)
	case len(id) > MaxSessionIDLength:
		return fmt.Errorf("%w: longer than %d bytes", domain.ErrInvalidSessionID, MaxSessionIDLength)
	case id == "." || id == "..":
		return fmt.Errorf("%w: %q", domain.ErrInvalidSessionID, id)
	}
	for _, r := range id {
		if !isIDRune(r) {
			return fmt.Errorf("%w: unexpected character %q", domain.ErrInvalidSessionID, r)
		}
	}
	return nil
}

func isIDRune(r rune) bool {
	return r < utf8.RuneSelf && (r == '-' || r == '_' || r == '.' ||
		('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9'))
}
