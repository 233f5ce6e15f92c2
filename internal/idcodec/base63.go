// Package idcodec provides a compact base-63 encoding for opaque call-hierarchy
// item identifiers handed to LSP/MCP clients.
//
// Base-63 Alphabet: A-Z (0-25), a-z (26-51), 0-9 (52-61), _ (62)
package idcodec

import "errors"

const (
	Base     = 63
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"
)

var (
	ErrEmptyString = errors.New("idcodec: empty string")
	ErrInvalidChar = errors.New("idcodec: invalid character")
)

// Encode encodes a uint64 value to a base-63 string. Returns "A" for zero.
func Encode(value uint64) string {
	if value == 0 {
		return string(Alphabet[0])
	}
	var buf [16]byte
	i := len(buf)
	for value > 0 {
		i--
		buf[i] = Alphabet[value%Base]
		value /= Base
	}
	return string(buf[i:])
}

// Decode decodes a base-63 string to a uint64 value.
func Decode(encoded string) (uint64, error) {
	if encoded == "" {
		return 0, ErrEmptyString
	}
	var value uint64
	for _, c := range encoded {
		v, err := charToValue(c)
		if err != nil {
			return 0, err
		}
		value = value*Base + v
	}
	return value, nil
}

// IsValid reports whether encoded consists entirely of base-63 alphabet characters.
func IsValid(encoded string) bool {
	if encoded == "" {
		return false
	}
	for _, c := range encoded {
		if _, err := charToValue(c); err != nil {
			return false
		}
	}
	return true
}

func charToValue(c rune) (uint64, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint64(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 26, nil
	case c >= '0' && c <= '9':
		return uint64(c-'0') + 52, nil
	case c == '_':
		return 62, nil
	default:
		return 0, ErrInvalidChar
	}
}
