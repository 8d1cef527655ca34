package model

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTicker is used when no ticker is supplied.
const DefaultTicker TickerSymbol = "AAPL"

const maxTickerLen = 12

var (
	ErrEmptyTicker   = errors.New("empty ticker symbol")
	ErrInvalidSymbol = errors.New("invalid ticker symbol format")
)

// TickerSymbol is a trimmed, upper-cased security identifier.
type TickerSymbol string

func (t TickerSymbol) String() string { return string(t) }

// ParseTicker trims and upper-cases raw. Besides letters and digits, the
// characters used by index and share-class symbols (^GSPC, BRK-B, BF.B, EURUSD=X)
// are accepted.
func ParseTicker(raw string) (TickerSymbol, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrEmptyTicker
	}
	if len(s) > maxTickerLen {
		return "", fmt.Errorf("%w: '%s'", ErrInvalidSymbol, s)
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '^', r == '=':
		default:
			return "", fmt.Errorf("%w: '%s'", ErrInvalidSymbol, s)
		}
	}
	return TickerSymbol(s), nil
}

// SplitTickers splits a comma-separated ticker list, dropping empty tokens.
func SplitTickers(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
