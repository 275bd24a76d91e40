package model

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Money is an amount in integer cents
type Money int64

// ParseMoney parses a decimal amount such as "12", "12.5" or "-3.40".
// More than two fractional digits are rejected.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, goerr.Wrap(ErrInvalidMoney, "empty amount")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, goerr.Wrap(ErrInvalidMoney, "no digits", goerr.V(AmountKey, s))
	}
	if len(frac) > 2 {
		return 0, goerr.Wrap(ErrInvalidMoney, "too many decimal places", goerr.V(AmountKey, s))
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, goerr.Wrap(ErrInvalidMoney, "not a decimal number", goerr.V(AmountKey, s))
	}

	cents := int64(0)
	if frac != "" {
		for len(frac) < 2 {
			frac += "0"
		}
		v, _ := strconv.ParseInt(frac, 10, 64)
		cents = v
	}

	var units int64
	if whole != "" {
		v, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || v > (math.MaxInt64-cents)/100 {
			return 0, goerr.Wrap(ErrInvalidMoney, "amount out of range", goerr.V(AmountKey, s))
		}
		units = v
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return Money(total), nil
}

// MoneyFromFloat converts a float amount, rounding to the nearest cent
func MoneyFromFloat(f float64) Money {
	return Money(math.Round(f * 100))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Float64 returns the amount in currency units
func (m Money) Float64() float64 {
	return float64(m) / 100
}

// String formats the amount with two decimal places
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	frac := strconv.FormatInt(v%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(v/100, 10) + "." + frac
}

// MarshalJSON encodes the amount as a JSON number
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if string(data) == "null" {
		*m = 0
		return nil
	}
	v, err := ParseMoney(string(data))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
