package jwtauth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// defaultExpiresIn is reported when the access lifetime has no recognised unit
const defaultExpiresIn = 900

// ParseLifetime converts a lifetime string such as "15m", "7d" or "1h"
// into a duration. A bare integer is read as seconds, and anything
// time.ParseDuration accepts ("1h30m") is accepted too.
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty lifetime")
	}

	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	unit := s[len(s)-1]
	if mult, ok := lifetimeUnits[unit]; ok {
		if n, err := strconv.Atoi(s[:len(s)-1]); err == nil {
			return time.Duration(n) * mult, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid lifetime %q", s)
	}
	return d, nil
}

var lifetimeUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// ExpiresInSeconds derives the expiresIn value reported alongside a token pair.
// Only a trailing m, h or d over an integer prefix is understood; every other
// form reports 900 seconds, even when the token itself was signed with a
// different lifetime.
func ExpiresInSeconds(lifetime string) int {
	if lifetime == "" {
		return defaultExpiresIn
	}

	var mult int
	switch lifetime[len(lifetime)-1] {
	case 'm':
		mult = 60
	case 'h':
		mult = 3600
	case 'd':
		mult = 86400
	default:
		return defaultExpiresIn
	}

	n, err := strconv.Atoi(lifetime[:len(lifetime)-1])
	if err != nil {
		return defaultExpiresIn
	}
	return n * mult
}
