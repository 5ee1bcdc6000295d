package models

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned for amounts that are not positive decimals.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is an amount in cents. Arithmetic on cents is exact, so totals never drift.
type Money int64

// MaxMoney caps a single amount at ten billion units. Millions of expenses at
// the cap still sum without overflowing int64.
const MaxMoney Money = 1_000_000_000_000

// ParseMoney converts a decimal string to cents.
//
// Both dot and comma separators are accepted and the third fractional digit is
// rounded half-up. Zero, negative, malformed and values above MaxMoney return
// ErrInvalidAmount. Only ASCII digits are accepted.
//
//	ParseMoney("12.34")  -> 1234
//	ParseMoney("12,346") -> 1235
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return parseExponent(s)
	}
	s = strings.ReplaceAll(s, ",", ".")

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || units > int64(MaxMoney)/100 {
		return 0, ErrInvalidAmount
	}

	var cents int64
	if len(fracPart) > 0 {
		cents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			cents += int64(fracPart[1] - '0')
		}
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			cents++
		}
	}

	total := units*100 + cents
	if total <= 0 || Money(total) > MaxMoney {
		return 0, ErrInvalidAmount
	}
	return Money(total), nil
}

func parseExponent(s string) (Money, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f > float64(MaxMoney)/100 {
		return 0, ErrInvalidAmount
	}
	cents := int64(math.Round(f * 100))
	if cents <= 0 || Money(cents) > MaxMoney {
		return 0, ErrInvalidAmount
	}
	return Money(cents), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Cents returns the raw amount in cents.
func (m Money) Cents() int64 { return int64(m) }

// String renders m with exactly two fractional digits.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON writes m as a JSON number such as 12.50.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) >= 2 && data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return ErrInvalidAmount
		}
		data = []byte(unquoted)
	}
	parsed, err := ParseMoney(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
