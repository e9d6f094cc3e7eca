package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"option-explorer/interfaces"
)

// OCCSymbol is a decoded OCC option symbol such as "AAPL240101C00100000"
type OCCSymbol struct {
	Root       string
	Expiration time.Time
	Type       interfaces.OptionType
	Strike     float64
}

// ParseOCCSymbol decodes ROOT + YYMMDD + C|P + strike*1000 (8 digits).
// A leading "O:" prefix is accepted.
func ParseOCCSymbol(symbol string) (*OCCSymbol, error) {
	s := strings.TrimPrefix(strings.TrimSpace(symbol), "O:")
	if len(s) < 16 {
		return nil, fmt.Errorf("not an OCC option symbol: %q", symbol)
	}

	tail := s[len(s)-15:]
	root := strings.TrimSpace(s[:len(s)-15])
	if root == "" {
		return nil, fmt.Errorf("not an OCC option symbol: %q", symbol)
	}

	expiration, err := time.Parse("060102", tail[:6])
	if err != nil {
		return nil, fmt.Errorf("invalid expiration in %q: %w", symbol, err)
	}

	var typ interfaces.OptionType
	switch tail[6] {
	case 'C':
		typ = interfaces.OptionTypeCall
	case 'P':
		typ = interfaces.OptionTypePut
	default:
		return nil, fmt.Errorf("invalid option type in %q", symbol)
	}

	strikeMilli, err := strconv.ParseInt(tail[7:], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid strike in %q: %w", symbol, err)
	}

	return &OCCSymbol{
		Root:       root,
		Expiration: expiration,
		Type:       typ,
		Strike:     float64(strikeMilli) / 1000,
	}, nil
}

// IsOptionSymbol reports whether symbol decodes as an OCC option symbol
func IsOptionSymbol(symbol string) bool {
	_, err := ParseOCCSymbol(symbol)
	return err == nil
}

// String re-encodes the symbol in OCC form without a prefix
func (o *OCCSymbol) String() string {
	kind := "C"
	if o.Type == interfaces.OptionTypePut {
		kind = "P"
	}
	return fmt.Sprintf("%s%s%s%08d", o.Root, o.Expiration.Format("060102"), kind, int64(o.Strike*1000+0.5))
}
