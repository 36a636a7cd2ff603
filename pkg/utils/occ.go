package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OCCSymbol holds the components of an OCC option contract symbol,
// e.g. AAPL240119C00195000.
type OCCSymbol struct {
	Underlying string
	Expiry     time.Time
	IsCall     bool
	Strike     decimal.Decimal
}

// ParseOCCSymbol parses an OCC-style option symbol. The trailing 15
// characters are fixed-width: yymmdd, C or P, and the strike in thousandths.
func ParseOCCSymbol(symbol string) (*OCCSymbol, error) {
	s := strings.TrimSpace(strings.ToUpper(symbol))
	if len(s) < 16 {
		return nil, fmt.Errorf("invalid OCC symbol %q: too short", symbol)
	}

	root := s[:len(s)-15]
	datePart := s[len(s)-15 : len(s)-9]
	typePart := s[len(s)-9]
	strikePart := s[len(s)-8:]

	expiry, err := time.Parse("060102", datePart)
	if err != nil {
		return nil, fmt.Errorf("invalid OCC symbol %q: bad expiry: %w", symbol, err)
	}

	var isCall bool
	switch typePart {
	case 'C':
		isCall = true
	case 'P':
		isCall = false
	default:
		return nil, fmt.Errorf("invalid OCC symbol %q: option type must be C or P", symbol)
	}

	thousandths, err := strconv.ParseInt(strikePart, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OCC symbol %q: bad strike: %w", symbol, err)
	}

	return &OCCSymbol{
		Underlying: root,
		Expiry:     expiry,
		IsCall:     isCall,
		Strike:     decimal.New(thousandths, -3),
	}, nil
}

// IsOCCSymbol reports whether the symbol parses as an OCC option symbol.
func IsOCCSymbol(symbol string) bool {
	_, err := ParseOCCSymbol(symbol)
	return err == nil
}

// FormatOCCSymbol builds an OCC symbol from its components.
func FormatOCCSymbol(underlying string, expiry time.Time, isCall bool, strike decimal.Decimal) string {
	t := "P"
	if isCall {
		t = "C"
	}
	thousandths := strike.Mul(decimal.NewFromInt(1000)).IntPart()
	return fmt.Sprintf("%s%s%s%08d", strings.ToUpper(underlying), expiry.Format("060102"), t, thousandths)
}
